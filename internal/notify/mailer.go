package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"repairhub/internal/metrics"
	"repairhub/internal/templates"
)

// Sender delivers one HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SMTPSender speaks implicit TLS on port 465 and STARTTLS-capable plain SMTP otherwise.
type SMTPSender struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (s SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	msg := buildMessage(s.From, to, subject, html)
	addr := net.JoinHostPort(s.Host, s.Port)
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	if s.Port != "465" {
		return errors.Wrap(smtp.SendMail(addr, auth, s.From, []string{to}, msg), "smtp send")
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 10 * time.Second},
		Config:    &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "smtp dial")
	}
	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "smtp client")
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return errors.Wrap(err, "smtp auth")
		}
	}
	if err := client.Mail(s.From); err != nil {
		return errors.Wrap(err, "smtp mail from")
	}
	if err := client.Rcpt(to); err != nil {
		return errors.Wrap(err, "smtp rcpt")
	}
	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "smtp data")
	}
	if _, err := w.Write(msg); err != nil {
		return errors.Wrap(err, "smtp write")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "smtp close data")
	}
	return client.Quit()
}

func buildMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(html)
	return []byte(b.String())
}

// LogSender logs the message instead of sending it. Used when EMAIL_HOST is unset.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, html string) error {
	zap.L().Named("mail").Info("email not sent, no SMTP host configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("bytes", len(html)),
	)
	return nil
}

// Mailer renders the account emails and sends them in the background.
type Mailer struct {
	sender  Sender
	emails  *template.Template
	baseURL string
	ttl     time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewMailer(sender Sender, baseURL string, tokenTTL time.Duration) *Mailer {
	return &Mailer{
		sender:  sender,
		emails:  templates.Emails(),
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     tokenTTL,
		log:     zap.L().Named("mail"),
	}
}

func (m *Mailer) VerificationLink(token string) string {
	return m.baseURL + "/api/users/authentication/" + token
}

func (m *Mailer) ResetLink(token string) string {
	return m.baseURL + "/api/auth/reset-password/" + token
}

func (m *Mailer) SendVerification(to, token string) {
	m.send(to, "Verify your email", templates.VerifyEmail, m.VerificationLink(token))
}

func (m *Mailer) SendPasswordReset(to, token string) {
	m.send(to, "Reset your password", templates.ResetPassword, m.ResetLink(token))
}

func (m *Mailer) send(to, subject, tmpl, link string) {
	var buf bytes.Buffer
	data := map[string]string{"Link": link, "ExpiresIn": m.ttl.String()}
	if err := m.emails.ExecuteTemplate(&buf, tmpl, data); err != nil {
		m.log.Error("render email", zap.String("template", tmpl), zap.Error(err))
		metrics.EmailDeliveries.WithLabelValues(tmpl, "failed").Inc()
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.sender.Send(ctx, to, subject, buf.String()); err != nil {
			m.log.Error("send email", zap.String("template", tmpl), zap.String("to", to), zap.Error(err))
			metrics.EmailDeliveries.WithLabelValues(tmpl, "failed").Inc()
			return
		}
		metrics.EmailDeliveries.WithLabelValues(tmpl, "sent").Inc()
	}()
}

// Wait blocks until queued emails finish.
func (m *Mailer) Wait() {
	m.wg.Wait()
}
