package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
)

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// KafkaMailer queues messages on the contact topic for the mail worker.
type KafkaMailer struct {
	Events events.Publisher
}

func (k *KafkaMailer) Send(ctx context.Context, m Message) error {
	return k.Events.Publish(ctx, events.TopicContact, m.From, map[string]any{
		"type":    "contact_message",
		"from":    m.From,
		"to":      m.To,
		"subject": m.Subject,
		"body":    m.Body,
	})
}

type ContactForm struct {
	Name    string `json:"name"    form:"name"`
	Email   string `json:"email"   form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

type ContactService struct {
	Mailer Mailer
	To     string
}

func (s *ContactService) Send(ctx context.Context, f ContactForm) error {
	l := logging.FromContext(ctx).With("svc", "contact")

	for _, v := range []string{f.Name, f.Email, f.Subject} {
		if strings.ContainsAny(v, "\r\n") {
			l.Warn("contact_rejected", "reason", "header_injection")
			return ErrHeaderInjection
		}
	}

	var verr ValidationErrors
	if strings.TrimSpace(f.Name) == "" {
		verr = append(verr, FieldError{Field: "name", Err: ErrRequired})
	}
	if strings.TrimSpace(f.Email) == "" {
		verr = append(verr, FieldError{Field: "email", Err: ErrRequired})
	} else if _, err := mail.ParseAddress(f.Email); err != nil {
		verr = append(verr, FieldError{Field: "email", Err: err})
	}
	if strings.TrimSpace(f.Subject) == "" {
		verr = append(verr, FieldError{Field: "subject", Err: ErrRequired})
	}
	if strings.TrimSpace(f.Message) == "" {
		verr = append(verr, FieldError{Field: "message", Err: ErrRequired})
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	m := Message{
		From:    f.Email,
		To:      s.To,
		Subject: f.Subject,
		Body:    f.Name + " <" + f.Email + ">\n\n" + f.Message,
	}
	if err := s.Mailer.Send(ctx, m); err != nil {
		l.Error("contact_send_failed", "error", err)
		return err
	}
	l.Info("contact_sent", "from", f.Email)
	return nil
}
