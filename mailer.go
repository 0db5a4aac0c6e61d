package main

import (
	"context"
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// ShopMail is a contact message addressed to a shop.
type ShopMail struct {
	To      string
	From    string
	Name    string
	Subject string
	Message string
}

func (m ShopMail) body() string {
	return fmt.Sprintf("Message from %s <%s>:\n\n%s\n", m.Name, m.From, m.Message)
}

type Notifier interface {
	Notify(ctx context.Context, m ShopMail) error
}

// SMTPNotifier delivers mail through an SMTP relay.
type SMTPNotifier struct {
	dialer *gomail.Dialer
}

func NewSMTPNotifier(host string, port int, user, pass string) *SMTPNotifier {
	return &SMTPNotifier{dialer: gomail.NewDialer(host, port, user, pass)}
}

func (n *SMTPNotifier) Notify(ctx context.Context, m ShopMail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.From, m.Name))
	msg.SetHeader("Reply-To", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.body())

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: send to %s: %v", ErrNotifier, m.To, err)
	}
	return nil
}

// LogNotifier only logs; used when no SMTP relay is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, m ShopMail) error {
	log.Printf("📧 mail to %s from %s <%s>: %s", m.To, m.Name, m.From, m.Subject)
	return nil
}

func NewNotifier(cfg *Config) Notifier {
	if cfg.SMTPHost == "" {
		log.Println("⚠️ SMTP_HOST not set, shop mails are only logged")
		return LogNotifier{}
	}
	return NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
}
