package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"repairhub/internal/models"
)

// Pusher delivers a single push notification.
type Pusher interface {
	Send(ctx context.Context, msg models.PushMessage) error
}

// ExpoPusher posts {to, title, body} to the Expo push API.
type ExpoPusher struct {
	url    string
	client *http.Client
}

func NewExpoPusher(url string, client *http.Client) *ExpoPusher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ExpoPusher{url: url, client: client}
}

type expoTicket struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

func (p *ExpoPusher) Send(ctx context.Context, msg models.PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode push")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build push request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send push")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var ticket expoTicket
	if err := json.Unmarshal(body, &ticket); err == nil && ticket.Data.Status == "error" {
		return fmt.Errorf("push rejected: %s", ticket.Data.Message)
	}
	return nil
}
