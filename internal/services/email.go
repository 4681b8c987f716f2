package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/devtrackhq/devtrack/backend/internal/models"
	"github.com/devtrackhq/devtrack/backend/pkg/logger"
	"gorm.io/gorm"
)

// EmailService delivers invitation notifications over SMTP. It is the
// concrete Notifier of the system; every failure here is soft — callers
// log or surface a warning and move on.
type EmailService struct {
	db      *gorm.DB
	baseURL string
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB, baseURL string) *EmailService {
	return &EmailService{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// GetConfig reads SMTP settings from the email config group.
func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// ProcessInvitationEmail is the task queue processor: it re-reads the
// invitation and mails the recipient a link embedding the token.
func (s *EmailService) ProcessInvitationEmail(ctx context.Context, task *InvitationEmailTask) error {
	var inv models.Invitation
	if err := s.db.Preload("Project").Preload("Inviter").Preload("Invitee").
		First(&inv, task.InvitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted or cancelled before the worker got to it; nothing to do.
			return nil
		}
		return err
	}
	if inv.Status != models.InvitationPending {
		return nil
	}

	err := s.SendInvitation(inv.RecipientEmail(), &inv)
	if err != nil {
		LogWarning("Invitations", "Notify",
			fmt.Sprintf("invitation %d: email to %s failed: %v", inv.ID, inv.RecipientEmail(), err),
			nil, "", "", nil)
	}
	return err
}

// InviteURL builds the link the recipient follows to accept.
func (s *EmailService) InviteURL(token string) string {
	return fmt.Sprintf("%s/invitations/%s/accept", s.baseURL, token)
}

// SendInvitation sends the invitation mail. With email disabled it is a
// no-op so development setups work without an SMTP server.
func (s *EmailService) SendInvitation(recipient string, inv *models.Invitation) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return nil
	}
	if recipient == "" {
		return nil
	}

	projectName := ""
	if inv.Project != nil {
		projectName = inv.Project.Name
	}

	subject := fmt.Sprintf("[DevTrack] Invitation to collaborate on %s", projectName)
	body := s.buildInvitationBody(inv, projectName)

	return s.sendEmail(config, []string{recipient}, subject, body)
}

func (s *EmailService) buildInvitationBody(inv *models.Invitation, projectName string) string {
	inviterName := ""
	if inv.Inviter != nil {
		inviterName = inv.Inviter.Nickname
		if inviterName == "" {
			inviterName = inv.Inviter.Username
		}
	}

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Project Invitation</h2>")
	sb.WriteString(fmt.Sprintf("<p><b>%s</b> has invited you to collaborate on <b>%s</b>.</p>", inviterName, projectName))
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"display: inline-block; padding: 10px 20px; background: #2d6cdf; color: #fff; border-radius: 4px; text-decoration: none;\">Accept Invitation</a></p>", s.InviteURL(inv.Token)))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #888;\">This invitation expires on %s.</p>", inv.ExpiresAt.Format("Jan 2, 2006")))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by DevTrack</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Warnf("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent invitation to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write([]byte(message)); err != nil {
		return err
	}

	return w.Close()
}
