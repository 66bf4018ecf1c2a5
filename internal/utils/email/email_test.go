package email

import (
	"errors"
	"io"
	"net/smtp"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiha11/Fincio/internal/config"
	"github.com/semiha11/Fincio/internal/format"
	"github.com/semiha11/Fincio/internal/models"
)

func testSender(send func(e *email.Email, addr string, auth smtp.Auth) error) *Sender {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewSender(&config.Config{
		SMTPHost:    "smtp.example.com",
		SMTPPort:    "587",
		SenderEmail: "noreply@fincio.app",
	}, log)
	s.send = send
	return s
}

func TestSendNotificationDigest(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	f := format.New(models.DefaultSettings(), func() time.Time { return now }).In(time.UTC)

	var sent *email.Email
	var sentAddr string
	s := testSender(func(e *email.Email, addr string, _ smtp.Auth) error {
		sent, sentAddr = e, addr
		return nil
	})

	err := s.SendNotificationDigest(Digest{
		To:   "ayse@example.com",
		Name: "Ayşe",
		Notifications: []models.Notification{
			{Title: "Bütçe Aşıldı", Desc: "Limit aşıldı", Time: "2026-10-17T09:30:00Z"},
		},
		Summary:   models.Summary{TotalBudgetLimit: 7000, RemainingBudget: -250, NetWorth: 12500},
		Formatter: f,
	})
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, "smtp.example.com:587", sentAddr)
	assert.Equal(t, []string{"ayse@example.com"}, sent.To)
	assert.Equal(t, "Fincio: 1 okunmamış bildirim", sent.Subject)
	body := string(sent.Text)
	assert.Contains(t, body, "Merhaba Ayşe")
	assert.Contains(t, body, "- Bütçe Aşıldı: Limit aşıldı (Bugün, 09:30)")
	assert.Contains(t, body, "Kalan bütçe: -₺250")
	assert.Contains(t, body, "Net değer: ₺12.500")
}

func TestSendNotificationDigest_Failure(t *testing.T) {
	s := testSender(func(*email.Email, string, smtp.Auth) error {
		return errors.New("connection refused")
	})

	err := s.SendNotificationDigest(Digest{To: "ayse@example.com"})
	assert.Error(t, err)
}
