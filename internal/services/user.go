package services

import (
	"errors"
	"strings"

	"github.com/devtrackhq/devtrack/backend/internal/models"
	"gorm.io/gorm"
)

// UserService is the user directory: lookups by id and email, plus the
// search backing the invite picker.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserSummary is the public shape of a user returned by search.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// GetByID returns an active user by id.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns a user by email, case-insensitive.
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Search finds users by email or nickname substring for the invite
// picker. The requester is excluded; at most 10 results are returned and
// queries shorter than 2 characters return nothing.
func (s *UserService) Search(query string, excludeUserID uint) ([]UserSummary, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []UserSummary{}, nil
	}

	pattern := "%" + query + "%"
	var users []models.User
	if err := s.db.
		Where("(email LIKE ? OR nickname LIKE ? OR username LIKE ?) AND id <> ? AND is_active = ?",
			pattern, pattern, pattern, excludeUserID, true).
		Limit(10).
		Find(&users).Error; err != nil {
		return nil, err
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, UserSummary{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Nickname: u.Nickname,
		})
	}
	return summaries, nil
}
