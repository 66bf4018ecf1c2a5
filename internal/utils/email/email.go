package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/semiha11/Fincio/internal/config"
	"github.com/semiha11/Fincio/internal/format"
	"github.com/semiha11/Fincio/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Digest is the content of one notification digest
type Digest struct {
	To            string
	Name          string
	Notifications []models.Notification
	Summary       models.Summary
	Formatter     *format.Formatter
}

// SendNotificationDigest mails the unread notifications together with the
// current budget figures
func (s *Sender) SendNotificationDigest(d Digest) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{d.To}
	e.Subject = fmt.Sprintf("Fincio: %d okunmamış bildirim", len(d.Notifications))
	e.Text = []byte(digestBody(d))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", d.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", d.To, e.Subject)
	return nil
}

func digestBody(d Digest) string {
	var b strings.Builder
	name := d.Name
	if name == "" {
		name = "Fincio kullanıcısı"
	}
	fmt.Fprintf(&b, "Merhaba %s,\n\n", name)

	b.WriteString("Okunmamış bildirimleriniz:\n")
	for _, n := range d.Notifications {
		fmt.Fprintf(&b, "- %s: %s", n.Title, n.Desc)
		if n.Time != "" && d.Formatter != nil {
			fmt.Fprintf(&b, " (%s)", d.Formatter.Date(n.Time))
		}
		b.WriteString("\n")
	}

	if d.Formatter != nil {
		fmt.Fprintf(&b, "\nBütçe limiti: %s\n", d.Formatter.Currency(d.Summary.TotalBudgetLimit))
		fmt.Fprintf(&b, "Kalan bütçe: %s\n", d.Formatter.Currency(d.Summary.RemainingBudget))
		fmt.Fprintf(&b, "Net değer: %s\n", d.Formatter.Currency(d.Summary.NetWorth))
	}

	b.WriteString("\nSevgiler,\nFincio")
	return b.String()
}
