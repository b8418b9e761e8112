package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPTransport delivers through a plain SMTP relay. Used in deployments
// without a transactional mail provider.
type SMTPTransport struct {
	addr     string
	username string
	password string
}

func NewSMTPTransport(addr, username, password string) *SMTPTransport {
	return &SMTPTransport{
		addr:     addr,
		username: username,
		password: password,
	}
}

func (t *SMTPTransport) Send(_ context.Context, msg Message) (string, error) {
	host := t.addr
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	auth := smtp.PlainAuth("", t.username, t.password, host)
	if err := smtp.SendMail(t.addr, auth, t.username, []string{msg.To}, []byte(b.String())); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}

	// SMTP has no provider message id to hand back.
	return "", nil
}
