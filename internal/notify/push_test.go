package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairhub/internal/models"
)

func TestExpoPusherPostsMessage(t *testing.T) {
	var got models.PushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"status":"ok","id":"abc"}}`))
	}))
	defer srv.Close()

	p := NewExpoPusher(srv.URL, srv.Client())
	err := p.Send(context.Background(), models.PushMessage{To: "ExponentPushToken[x]", Title: "Order", Body: "Accepted"})
	require.NoError(t, err)
	assert.Equal(t, "ExponentPushToken[x]", got.To)
	assert.Equal(t, "Order", got.Title)
	assert.Equal(t, "Accepted", got.Body)
}

func TestExpoPusherErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"ticket error", http.StatusOK, `{"data":{"status":"error","message":"DeviceNotRegistered"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewExpoPusher(srv.URL, nil).Send(context.Background(), models.PushMessage{To: "t"})
			assert.Error(t, err)
		})
	}
}
