package notify

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
)

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends events as plain HTML emails.
type Email struct {
	config   EmailConfig
	profiles ProfileLookup
	sendMail SendMailFunc
}

// NewEmail creates an email notifier.
func NewEmail(config EmailConfig, profiles ProfileLookup) *Email {
	return &Email{config: config, profiles: profiles, sendMail: smtp.SendMail}
}

// Notify implements Notifier.
func (e *Email) Notify(ctx context.Context, event Event) error {
	profile, err := e.profiles.Profile(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up email: %w", err)
	}
	if profile.Email == "" {
		return nil
	}

	body := fmt.Sprintf(`<html><body>
		<h2>%s</h2>
		<p>Hi %s,</p>
		<p>%s</p>
	</body></html>`,
		html.EscapeString(event.Title()),
		html.EscapeString(profile.DisplayName),
		html.EscapeString(event.Body()))

	if err := e.send(profile.Email, event.Title(), body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (e *Email) send(to, subject, body string) error {
	from := e.config.From
	if e.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", e.config.FromName, e.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	var auth smtp.Auth
	if e.config.User != "" {
		auth = smtp.PlainAuth("", e.config.User, e.config.Password, e.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	return e.sendMail(addr, auth, e.config.From, []string{to}, []byte(msg))
}
