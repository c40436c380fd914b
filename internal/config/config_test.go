package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRATION_TIME", "")
	t.Setenv("PUSH_PROVIDER", "")

	cfg := FromEnv()
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 20*time.Minute, cfg.EmailTokenTTL)
	assert.Equal(t, "expo", cfg.PushProvider)
	assert.Equal(t, 5, cfg.PushMaxAttempts)
}

func TestFromEnvParsesValues(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_TIME", "900")
	t.Setenv("JWT_REFRESH_TOKEN_EXPIRATION_TIME", "48h")
	t.Setenv("GOOGLE_CLIENT_IDS", "a.apps, ,b.apps")
	t.Setenv("URL", "https://repair.example.com/")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("PUSH_PROVIDER", "Firebase")

	cfg := FromEnv()
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []string{"a.apps", "b.apps"}, cfg.GoogleClientIDs)
	assert.Equal(t, "https://repair.example.com", cfg.BaseURL)
	assert.True(t, cfg.MongoTransactions)
	assert.Equal(t, "firebase", cfg.PushProvider)
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWTSecret:        "a",
		JWTRefreshSecret: "b",
		MongoURI:         "mongodb://localhost",
		PushProvider:     "expo",
	}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.JWTSecret = ""
	assert.ErrorContains(t, missing.Validate(), "JWT_PRIVATE_KEY")

	same := valid
	same.JWTRefreshSecret = "a"
	assert.Error(t, same.Validate())

	firebase := valid
	firebase.PushProvider = "firebase"
	assert.ErrorContains(t, firebase.Validate(), "FIREBASE_CREDENTIALS")

	unknown := valid
	unknown.PushProvider = "carrier-pigeon"
	assert.Error(t, unknown.Validate())
}
