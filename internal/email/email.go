package email

import (
	"context"
	"fmt"
	"time"

	"terrepro/internal/config"
	"terrepro/internal/logger"
	"terrepro/internal/models"

	"github.com/mailgun/mailgun-go/v5"
)

type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	appURL      string
	enabled     bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunEnabled()

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.MailgunDomain,
		senderEmail: cfg.MailgunSenderEmail,
		senderName:  cfg.MailgunSenderName,
		appURL:      cfg.AppURL,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s != nil && s.enabled
}

// SendWelcomeEmail greets a newly registered farmer. The account itself is
// created by the API; this mail is informational only.
func (s *Service) SendWelcomeEmail(ctx context.Context, user models.User) error {
	if !s.IsEnabled() {
		return fmt.Errorf("email service is not configured")
	}
	if user.Email == "" {
		return fmt.Errorf("user has no email address")
	}

	htmlBody, err := s.generateWelcomeHTML(user)
	if err != nil {
		return err
	}

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		fmt.Sprintf("Bienvenue sur TerrePro, %s !", user.DisplayName()),
		s.generateWelcomeText(user),
		user.Email,
	)
	message.SetHTML(htmlBody)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	logger.Info("Welcome email sent", "email", user.Email)
	return nil
}
