package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func fakeTokenInfo(t *testing.T, status int, body map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "good-token", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newVerifier(t *testing.T, srv *httptest.Server) GoogleVerifier {
	t.Helper()
	v, err := NewGoogleVerifier(context.Background(), []string{"mobile-client", "web-client"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return v
}

func TestGoogleVerifierAcceptsKnownClient(t *testing.T) {
	srv := fakeTokenInfo(t, http.StatusOK, map[string]interface{}{
		"email":     "a@x.com",
		"issued_to": "web-client",
	})

	err := newVerifier(t, srv).Verify(context.Background(), "good-token", "a@x.com")
	assert.NoError(t, err)
}

func TestGoogleVerifierRejectsMismatches(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]interface{}
	}{
		{"email mismatch", http.StatusOK, map[string]interface{}{"email": "b@x.com", "issued_to": "web-client"}},
		{"foreign client", http.StatusOK, map[string]interface{}{"email": "a@x.com", "issued_to": "someone-else"}},
		{"provider error", http.StatusBadRequest, map[string]interface{}{"error": "invalid_token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeTokenInfo(t, tt.status, tt.body)
			err := newVerifier(t, srv).Verify(context.Background(), "good-token", "a@x.com")
			assert.ErrorIs(t, err, ErrGoogleToken)
		})
	}
}
