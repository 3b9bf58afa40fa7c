package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"
)

// EmailService is the C6 notifier's transport: a single generic send, since
// the out-of-stock report is the only email this module sends.
type EmailService interface {
	SendEmail(ctx context.Context, req EmailRequest) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

func NewDevEmailService(smtpHost, smtpPort string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: "noreply@warehouse.dev",
	}
}

func (s *smtpEmailService) SendEmail(ctx context.Context, req EmailRequest) error {
	if len(req.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}
	if req.Subject == "" {
		return fmt.Errorf("subject is required")
	}

	message := s.buildMessage(req)

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, req.To, []byte(message)); err != nil {
		log.Error().
			Err(err).
			Strs("to", req.To).
			Str("subject", req.Subject).
			Msg("failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	log.Info().
		Strs("to", req.To).
		Str("subject", req.Subject).
		Msg("email sent successfully")

	return nil
}

// buildMessage constructs the email message with headers and body.
func (s *smtpEmailService) buildMessage(req EmailRequest) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("From: %s\r\n", s.smtpFrom))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(req.To, ", ")))

	if len(req.Cc) > 0 {
		builder.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(req.Cc, ", ")))
	}
	if len(req.Bcc) > 0 {
		builder.WriteString(fmt.Sprintf("Bcc: %s\r\n", strings.Join(req.Bcc, ", ")))
	}

	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", req.Subject))

	if req.IsHTML {
		builder.WriteString("MIME-Version: 1.0\r\n")
		builder.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	} else {
		builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	}

	builder.WriteString("\r\n")
	builder.WriteString(req.Body)

	return builder.String()
}
