package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPTransport sends the code as a plain-text email. It authenticates with
// PLAIN auth when a username is set; net/smtp upgrades to STARTTLS when the
// server offers it and refuses PLAIN auth over an unencrypted remote link.
type SMTPTransport struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg, sendMail: smtp.SendMail}
}

func (t *SMTPTransport) Deliver(ctx context.Context, destination, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.cfg.Host == "" || t.cfg.From == "" {
		return fmt.Errorf("smtp transport is not configured")
	}
	if strings.ContainsAny(destination, "\r\n") {
		return fmt.Errorf("invalid destination address")
	}

	var auth smtp.Auth
	if t.cfg.Username != "" {
		auth = smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	}

	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	if err := t.sendMail(addr, auth, t.cfg.From, []string{destination}, buildMessage(t.cfg.From, destination, code)); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

func buildMessage(from, to, code string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: Your passkeeper reset code\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString("Your one-time code to reset the master password is: " + code + "\r\n")
	sb.WriteString("If you did not request a reset, ignore this message.\r\n")
	return []byte(sb.String())
}
