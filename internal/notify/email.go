// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers rendered digest artifacts by email.
package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Mailer sends digest emails over SMTP with STARTTLS-capable servers.
type Mailer struct {
	Config   types.SMTPConfig
	Password string

	// send is the SMTP submission function, replaceable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer returns a Mailer for the given server settings. password is
// kept out of SMTPConfig so it never lands in a config file.
func NewMailer(cfg types.SMTPConfig, password string) *Mailer {
	return &Mailer{
		Config:   cfg,
		Password: password,
		send:     smtp.SendMail,
	}
}

// Send emails the attachments to every configured recipient as one
// multipart/mixed message.
func (m *Mailer) Send(ctx context.Context, subject, body string, attachmentPaths []string) error {
	if m.Config.Host == "" {
		return fmt.Errorf("SMTP host not configured")
	}
	if m.Config.From == "" || len(m.Config.To) == 0 {
		return fmt.Errorf("SMTP sender and recipients must be configured")
	}

	msg, err := m.buildMessage(subject, body, attachmentPaths)
	if err != nil {
		return err
	}

	port := m.Config.Port
	if port == 0 {
		port = 587
	}
	addr := net.JoinHostPort(m.Config.Host, fmt.Sprintf("%d", port))

	var auth smtp.Auth
	if m.Config.Username != "" {
		auth = smtp.PlainAuth("", m.Config.Username, m.Password, m.Config.Host)
	}

	// smtp.SendMail has no context hook; run it in a goroutine so a
	// cancelled run does not hang on a wedged server.
	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.Config.From, m.Config.To, msg)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending email via %s: %w", addr, err)
		}
		return nil
	}
}

// buildMessage constructs the multipart/mixed MIME message: headers, a
// plain-text body part, and one base64 part per attachment.
func (m *Mailer) buildMessage(subject, body string, attachmentPaths []string) ([]byte, error) {
	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", m.Config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(m.Config.To, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", boundary))
	msg.WriteString("\r\n")

	// Body part.
	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	for _, path := range attachmentPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading attachment %s: %w", path, err)
		}

		name := filepath.Base(path)
		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString(fmt.Sprintf("Content-Type: %s; name=%q\r\n", contentType(name), name))
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", name))
		msg.WriteString("\r\n")
		msg.WriteString(wrapBase64(base64.StdEncoding.EncodeToString(data)))
		msg.WriteString("\r\n")
	}

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return []byte(msg.String()), nil
}

// contentType maps an attachment filename to a MIME type.
func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".md":
		return "text/markdown"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// wrapBase64 folds encoded data at 76 columns per RFC 2045.
func wrapBase64(s string) string {
	const width = 76
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteString("\r\n")
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}
