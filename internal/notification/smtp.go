package notification

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wneessen/go-mail"
)

const maskedPassword = "***"

// SMTPTransport delivers messages via SMTP using the go-mail library.
type SMTPTransport struct {
	config SMTPConfig
}

// NewSMTPTransport creates a new SMTPTransport with the given configuration.
func NewSMTPTransport(config SMTPConfig) *SMTPTransport {
	return &SMTPTransport{config: config}
}

// Name returns the transport identifier.
func (t *SMTPTransport) Name() string { return "smtp" }

// Settings returns the connection settings with the password masked.
func (t *SMTPTransport) Settings() []Setting {
	password := ""
	if t.config.Password != "" {
		password = maskedPassword
	}
	return []Setting{
		{Key: "address", Value: t.config.Host},
		{Key: "port", Value: strconv.Itoa(t.config.Port)},
		{Key: "user_name", Value: t.config.Username},
		{Key: "password", Value: password},
		{Key: "encryption", Value: encryptionName(t.config.Encryption)},
	}
}

// Send delivers msg to all of msg.To in one SMTP transaction.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := t.buildMsg(msg)
	if err != nil {
		return err
	}

	opts := connectionOptions(t.config.Encryption, t.config.Port)
	if t.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.config.Username),
			mail.WithPassword(t.config.Password),
		)
	}

	c, err := mail.NewClient(t.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return c.DialAndSendWithContext(ctx, m)
}

func (t *SMTPTransport) buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient list: %w", err)
	}

	m.Subject(msg.Subject)

	// Plain text first; HTML is the alternative for clients that render it.
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	if html, err := buildEmailHTML(msg.Subject, msg.Body); err == nil {
		m.AddAlternativeString(mail.TypeTextHTML, html)
	}
	return m, nil
}

// connectionOptions returns the go-mail options for the port and encryption
// mode. WithSSL comes before WithPort so the configured port is kept.
func connectionOptions(enc string, port int) []mail.Option {
	var opts []mail.Option
	if implicitTLS(enc) {
		opts = append(opts, mail.WithSSL())
	}
	return append(opts,
		mail.WithPort(port),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(enc)),
	)
}

// implicitTLS reports whether the connection is TLS from the first byte
// (SMTPS, usually port 465) rather than upgraded with STARTTLS.
func implicitTLS(enc string) bool {
	return enc == "ssl_tls"
}

// tlsPolicyFromEncryption returns the STARTTLS policy for enc. An implicit
// TLS connection is already encrypted, so it never negotiates STARTTLS.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "starttls":
		return mail.TLSMandatory
	default:
		return mail.NoTLS
	}
}

func encryptionName(enc string) string {
	switch enc {
	case "ssl_tls", "starttls":
		return enc
	default:
		return "none"
	}
}
