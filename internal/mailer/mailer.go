// Package mailer delivers guest access PINs over SMTP. Connection settings
// come from the settings row when populated, otherwise from the environment
// configuration. With no SMTP host configured the mail is logged instead so
// guest creation keeps working in development.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/config"
	"github.com/ervall/mediavault/internal/database"
)

// Mailer sends guest PIN mail.
type Mailer struct {
	db     *gorm.DB
	cfg    config.SMTPConfig
	logger hclog.Logger

	// send is swappable for tests.
	send func(addr string, auth smtp.Auth, tlsConfig *tls.Config, from string, to []string, msg []byte) error
}

// New creates a Mailer on the given connection.
func New(db *gorm.DB, cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		db:     db,
		cfg:    cfg,
		logger: hclog.New(&hclog.LoggerOptions{Name: "mailer", Level: hclog.Info}),
		send:   sendMail,
	}
}

type smtpSettings struct {
	host      string
	port      int
	user      string
	password  string
	tls       bool
	fromEmail string
	fromName  string
	domain    string
}

// effective merges the settings row over the environment fallback. The row
// wins as a block once it names a host, matching how the admin expects the
// settings screen to behave.
func (m *Mailer) effective() smtpSettings {
	s := smtpSettings{
		host:      m.cfg.Host,
		port:      m.cfg.Port,
		user:      m.cfg.User,
		password:  m.cfg.Password,
		tls:       m.cfg.TLS,
		fromEmail: m.cfg.FromEmail,
		fromName:  m.cfg.FromName,
		domain:    "localhost",
	}

	var row database.SystemSettings
	if err := m.db.First(&row).Error; err != nil {
		return s
	}
	if row.SMTPHost != nil && *row.SMTPHost != "" {
		s.host = *row.SMTPHost
		s.port = row.SMTPPort
		s.tls = row.SMTPTLS
		if row.SMTPUser != nil {
			s.user = *row.SMTPUser
		}
		if row.SMTPPassword != nil {
			s.password = *row.SMTPPassword
		}
	}
	if row.SenderEmail != nil && *row.SenderEmail != "" {
		s.fromEmail = *row.SenderEmail
	}
	if row.SenderName != "" {
		s.fromName = row.SenderName
	}
	if row.Domain != nil && *row.Domain != "" {
		s.domain = *row.Domain
	}
	return s
}

// SendPIN mails the access PIN to a newly invited guest. Failures are logged,
// never returned: the admin has already seen the PIN in the create response.
func (m *Mailer) SendPIN(email, pin string, name *string) {
	s := m.effective()

	guestName := "Guest"
	if name != nil && *name != "" {
		guestName = *name
	}

	if s.host == "" {
		m.logger.Info("SMTP not configured, mock mail",
			"to", email, "pin", pin)
		return
	}

	link := s.domain
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		link = "https://" + link
	}

	msg := buildMessage(s.fromName, s.fromEmail, email, guestName, pin, link)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}
	var tlsConfig *tls.Config
	if s.tls {
		tlsConfig = &tls.Config{ServerName: s.host}
	}

	if err := m.send(addr, auth, tlsConfig, s.fromEmail, []string{email}, msg); err != nil {
		m.logger.Error("failed to send PIN mail", "to", email, "host", s.host, "error", err)
		m.logger.Info("fallback PIN log", "to", email, "pin", pin)
		return
	}
	m.logger.Info("PIN mail sent", "to", email, "host", s.host)
}

func buildMessage(fromName, fromEmail, to, name, pin, link string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, fromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Your Media Vault access PIN\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, `<html><body>
<p>Hello %s,</p>
<p>You have been invited to the vault.</p>
<p>Your access PIN: <strong style="font-size:24px;letter-spacing:4px;">%s</strong></p>
<p><a href="%s">Enter the vault</a></p>
<p>This is an automated key. Do not share.</p>
</body></html>`, name, pin, link)
	return []byte(b.String())
}

// sendMail performs an SMTP exchange, upgrading with STARTTLS when the server
// offers it and a TLS config is present.
func sendMail(addr string, auth smtp.Auth, tlsConfig *tls.Config, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if tlsConfig != nil {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return err
			}
		}
	}
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
