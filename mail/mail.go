package mail

import (
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/pkg/errors"
)

// Config describes the outbound smtp relay.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Send delivers one plain-text message to the given recipients.
func Send(cfg Config, subject, body string, recipients ...string) error {
	if len(recipients) == 0 {
		return errors.New("no recipients given")
	}
	if cfg.Host == "" {
		return errors.New("mail host is not configured")
	}
	port := cfg.Port
	if port == 0 {
		port = 25
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(recipients, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", port))
	if err := smtp.SendMail(addr, auth, cfg.From, recipients, []byte(msg.String())); err != nil {
		return errors.Wrapf(err, "failed to send mail via %s", addr)
	}
	return nil
}
