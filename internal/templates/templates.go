// Package templates embeds the HTML pages rendered by callback routes and the
// bodies of outgoing emails.
package templates

import (
	"embed"
	"html/template"
)

//go:embed pages/*.html
var pageFS embed.FS

//go:embed emails/*.html
var emailFS embed.FS

// Page names, as passed to gin's c.HTML.
const (
	EmailVerification         = "EmailVerification.html"
	ResetPasswordForm         = "ResetPasswordForm.html"
	PasswordResetVerification = "PasswordResetVerification.html"
	PaymentSuccess            = "PaymentSuccess.html"
	PaymentFail               = "PaymentFail.html"
	PaymentCancel             = "PaymentCancel.html"
)

// Email body names.
const (
	VerifyEmail   = "verify.html"
	ResetPassword = "reset.html"
)

func Pages() *template.Template {
	return template.Must(template.ParseFS(pageFS, "pages/*.html"))
}

func Emails() *template.Template {
	return template.Must(template.ParseFS(emailFS, "emails/*.html"))
}
