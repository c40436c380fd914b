package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, html string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (r *recordingSender) Send(_ context.Context, to, subject, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{to, subject, html})
	return nil
}

func TestMailerLinks(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer(sender, "https://repair.example/", 20*time.Minute)

	m.SendVerification("a@example.com", "tok1")
	m.SendPasswordReset("b@example.com", "tok2")
	m.Wait()

	require.Len(t, sender.sent, 2)
	byTo := map[string]sentMail{}
	for _, s := range sender.sent {
		byTo[s.to] = s
	}
	assert.Contains(t, byTo["a@example.com"].html, "https://repair.example/api/users/authentication/tok1")
	assert.Contains(t, byTo["b@example.com"].html, "https://repair.example/api/auth/reset-password/tok2")
	assert.Equal(t, "Reset your password", byTo["b@example.com"].subject)
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(buildMessage("from@x", "to@x", "Hi", "<p>x</p>"))
	assert.Contains(t, msg, "Subject: Hi\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.True(t, len(msg) > 0 && msg[len(msg)-8:] == "<p>x</p>")
}
