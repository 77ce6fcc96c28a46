package notifier

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"bookvault/internal/config"
)

// smtpNotifier delivers links by email over SMTP. All credentials come from
// configuration; nothing is embedded in source.
type smtpNotifier struct {
	client *mail.Client
	from   string
}

// NewSMTP builds a Notifier from SMTP configuration. It returns (nil, nil)
// when no host is configured, which callers treat as notifications disabled.
func NewSMTP(cfg config.SMTPConfig) (Notifier, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &smtpNotifier{client: client, from: cfg.From}, nil
}

// Send emails the download link to the recipient.
func (n *smtpNotifier) Send(ctx context.Context, recipient, link string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject("Your document is ready")
	msg.SetBodyString(mail.TypeTextPlain, "Download your document here: "+link+"\n")

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send notification to %s: %w", recipient, err)
	}
	return nil
}
