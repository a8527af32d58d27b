package mailer

import (
	"fmt"

	"github.com/anonto42/recipe-hub/backend/pkg/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends HTML mail over SMTP.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

// New returns nil when mail is not configured.
func New(cfg config.MailConfig) *Mailer {
	if !cfg.Enabled() {
		return nil
	}
	return &Mailer{
		from:   fmt.Sprintf("%s <%s>", cfg.SenderName, cfg.Username),
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
