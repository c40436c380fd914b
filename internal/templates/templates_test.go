package templates

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesParse(t *testing.T) {
	pages := Pages()
	for _, name := range []string{
		EmailVerification,
		ResetPasswordForm,
		PasswordResetVerification,
		PaymentSuccess,
		PaymentFail,
		PaymentCancel,
	} {
		assert.NotNil(t, pages.Lookup(name), name)
	}
}

func TestResetFormPostsBackToToken(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Pages().ExecuteTemplate(&buf, ResetPasswordForm, map[string]string{"Token": "abc.def"}))
	assert.Contains(t, buf.String(), `action="/api/auth/reset-password/abc.def"`)
}

func TestEmailBodiesEmbedLink(t *testing.T) {
	emails := Emails()
	for _, name := range []string{VerifyEmail, ResetPassword} {
		var buf bytes.Buffer
		require.NoError(t, emails.ExecuteTemplate(&buf, name, map[string]string{
			"Link":      "http://localhost:3001/x",
			"ExpiresIn": "20m0s",
		}))
		assert.Contains(t, buf.String(), `href="http://localhost:3001/x"`)
	}
}
