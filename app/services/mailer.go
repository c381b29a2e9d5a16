package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// EmailSender is satisfied by *Mailer.
type EmailSender interface {
	SendHTMLEmail(to, subject, htmlBody string) error
}

type Mailer struct {
	config Config
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		config: cfg,
	}
}

func (m *Mailer) SendHTMLEmail(to, subject, htmlBody string) error {
	if m.config.Host == "" {
		log.Printf("Mailer.SendHTMLEmail: EMAIL_HOST not set, skipping %q to %s", subject, to)
		return nil
	}

	headers := [][2]string{
		{"From", m.config.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=\"UTF-8\""},
	}

	var msg strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n" + htmlBody)

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)

	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg.String()))
	if err != nil {
		log.Printf("Mailer.SendHTMLEmail: failed to send to %s: %v", to, err)
		return fmt.Errorf("failed to send html email: %w", err)
	}

	return nil
}
