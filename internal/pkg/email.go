package pkg

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether an SMTP host was provided; delivery is skipped
// entirely otherwise (the notification record stays the copy of record).
func (cfg SMTPConfig) Configured() bool {
	return cfg.Host != ""
}

// Send lets a config double as a mail sender.
func (cfg SMTPConfig) Send(to, subject, htmlBody string) error {
	return SendEmail(cfg, to, subject, htmlBody)
}

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return d.DialAndSend(m)
}

func OTPEmailHTML(action, code string, ttl time.Duration) string {
	return fmt.Sprintf(
		`<p>Hello,</p><p>Your one-time code for <b>%s</b> is <b style="font-size:18px;">%s</b>.</p><p>It expires in %d minutes. Do not share it with anyone.</p>`,
		action, code, int(ttl.Minutes()))
}
