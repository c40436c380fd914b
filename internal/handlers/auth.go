package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"repairhub/internal/apperr"
	"repairhub/internal/auth"
	"repairhub/internal/models"
	"repairhub/internal/store"
	"repairhub/internal/templates"
	"repairhub/internal/validation"
)

const RefreshHeader = "refresh-token"

var (
	errBadCredentials  = apperr.BadRequest("Invalid email or password")
	errInvalidToken    = apperr.BadRequest("Invalid token")
	errNoRefreshToken  = apperr.Unauthorized("Access denied. No refresh token provided")
	errGoogleOnly      = apperr.BadRequest("This user does not have a password. Please log in with Google")
	errEmailUnverified = apperr.BadRequest("Email is not verified. Please check your email to verify your account")
	errUnknownEmail    = apperr.BadRequest("User not found with this given email")
)

// AccountMailer sends the account emails without blocking the request.
type AccountMailer interface {
	SendVerification(to, token string)
	SendPasswordReset(to, token string)
}

type sessionData struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func issueSession(tokens *auth.TokenService, user *models.User) (sessionData, error) {
	access, err := tokens.IssueAccess(user.ID, user.IsAdmin)
	if err != nil {
		return sessionData{}, err
	}
	refresh, err := tokens.IssueRefresh(user.ID)
	if err != nil {
		return sessionData{}, err
	}
	return sessionData{
		ID:           user.ID.Hex(),
		Name:         user.Name,
		Email:        user.Email,
		Token:        access,
		RefreshToken: refresh,
	}, nil
}

// sendVerification signs an email token and hands it to the mailer.
func sendVerification(tokens *auth.TokenService, mailer AccountMailer, user *models.User) {
	token, err := tokens.IssueLink(user.ID, auth.PurposeVerify)
	if err != nil {
		zap.L().Named("auth").Error("issue verification token", zap.Error(err))
		return
	}
	mailer.SendVerification(user.Email, token)
}

func Login(users store.UserStore, tokens *auth.TokenService, mailer AccountMailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth"

		var req validation.LoginRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := users.FindByEmail(ctx, normalizeEmail(req.Email))
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, route, errBadCredentials)
			return
		}
		if err != nil {
			respondError(c, route, err)
			return
		}
		if !user.HasPassword() {
			respondError(c, route, errGoogleOnly)
			return
		}
		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			respondError(c, route, errBadCredentials)
			return
		}
		if !user.Verified {
			sendVerification(tokens, mailer, user)
			respondError(c, route, errEmailUnverified)
			return
		}

		session, err := issueSession(tokens, user)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Login Successfully", session)
	}
}

// NewToken exchanges a refresh token for a new access token.
func NewToken(users store.UserStore, revoked store.TokenStore, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/newToken"

		raw := strings.TrimSpace(c.GetHeader(RefreshHeader))
		if raw == "" {
			respondError(c, route, errNoRefreshToken)
			return
		}
		claims, err := tokens.ParseRefresh(raw)
		if err != nil {
			respondError(c, route, errInvalidToken)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		isRevoked, err := revoked.IsRevoked(ctx, hashToken(raw))
		if err != nil {
			respondError(c, route, err)
			return
		}
		if isRevoked {
			respondError(c, route, errInvalidToken)
			return
		}

		id, _ := claims.ObjectID()
		user, err := users.FindByID(ctx, id)
		if err != nil {
			respondError(c, route, notFoundOr(err, errBadCredentials))
			return
		}
		access, err := tokens.IssueAccess(user.ID, user.IsAdmin)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "New Token Generated Successfully", sessionData{
			ID:           user.ID.Hex(),
			Name:         user.Name,
			Email:        user.Email,
			Token:        access,
			RefreshToken: raw,
		})
	}
}

// Logout revokes the refresh token until its natural expiry.
func Logout(revoked store.TokenStore, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/logout"

		raw := strings.TrimSpace(c.GetHeader(RefreshHeader))
		if raw == "" {
			respondError(c, route, errNoRefreshToken)
			return
		}
		claims, err := tokens.ParseRefresh(raw)
		if err != nil {
			respondError(c, route, errInvalidToken)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		userID, _ := claims.ObjectID()
		expiresAt := time.Now().Add(tokens.RefreshTTL())
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		err = revoked.Revoke(ctx, models.RevokedToken{
			UserID:    userID,
			TokenHash: hashToken(raw),
			ExpiresAt: expiresAt,
			CreatedAt: time.Now(),
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Logout Successfully"})
	}
}

func ForgotPassword(users store.UserStore, tokens *auth.TokenService, mailer AccountMailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/forgot-password"

		var req validation.ForgotPasswordRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := users.FindByEmail(ctx, normalizeEmail(req.Email))
		if err != nil {
			respondError(c, route, notFoundOr(err, errUnknownEmail))
			return
		}
		token, err := tokens.IssueLink(user.ID, auth.PurposeReset)
		if err != nil {
			respondError(c, route, err)
			return
		}
		mailer.SendPasswordReset(user.Email, token)
		c.JSON(http.StatusOK, gin.H{"success": "Check your email to reset your password"})
	}
}

// ResetPasswordForm renders the form posting back to the same link.
func ResetPasswordForm(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/reset-password/:token"

		token := c.Param("token")
		if _, err := tokens.ParseLink(token, auth.PurposeReset); err != nil {
			respondError(c, route, errInvalidToken)
			return
		}
		c.HTML(http.StatusOK, templates.ResetPasswordForm, gin.H{"Token": token})
	}
}

// ResetPassword stores the new password and marks the account verified,
// since the link proves control of the mailbox.
func ResetPassword(users store.UserStore, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/reset-password/:token"

		var req validation.ResetPasswordRequest
		if !bindFormAndValidate(c, route, &req) {
			return
		}
		claims, err := tokens.ParseLink(c.Param("token"), auth.PurposeReset)
		if err != nil {
			respondError(c, route, errInvalidToken)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		id, _ := claims.ObjectID()
		if err := users.SetPassword(ctx, id, hash); err != nil {
			respondError(c, route, notFoundOr(err, errInvalidToken))
			return
		}
		c.HTML(http.StatusOK, templates.PasswordResetVerification, nil)
	}
}
