package services

import (
	"fmt"
	"testing"

	"github.com/devtrackhq/devtrack/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory database migrated with the full schema.
// A single connection keeps the in-memory database alive for the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Collaborator{},
		&models.Invitation{},
		&models.RefreshToken{},
		&models.SystemConfig{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Role:     "user",
		AuthType: "local",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

func createTestProject(t *testing.T, db *gorm.DB, ownerID uint, name string) *models.Project {
	t.Helper()

	project := models.Project{
		Name:             name,
		OwnerID:          ownerID,
		DeploymentStatus: models.DeploymentPending,
		IsActive:         true,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return &project
}

func addTestCollaborator(t *testing.T, db *gorm.DB, projectID, userID uint, role string) *models.Collaborator {
	t.Helper()

	collab := models.Collaborator{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	if err := db.Create(&collab).Error; err != nil {
		t.Fatalf("failed to add collaborator: %v", err)
	}
	return &collab
}
