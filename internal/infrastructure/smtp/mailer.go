package smtp

import (
	"context"

	"github.com/thlight-panel/internal/config"
	"github.com/thlight-panel/internal/domain"
	"gopkg.in/gomail.v2"
)

// dialer is the subset of *gomail.Dialer the transport needs.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Transport delivers emails over SMTP.
type Transport struct {
	dialer dialer
	from   string
}

func NewTransport(cfg *config.Config) *Transport {
	return &Transport{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (t *Transport) Name() string { return "smtp" }

// Deliver sends msg as a plain-text email. gomail has no context support;
// ctx is accepted to satisfy mailrelay.Transport.
func (t *Transport) Deliver(_ context.Context, msg domain.OutboundEmail) error {
	return t.dialer.DialAndSend(buildMessage(t.from, msg))
}

func buildMessage(from string, msg domain.OutboundEmail) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}
