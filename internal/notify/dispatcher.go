package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"repairhub/internal/metrics"
	"repairhub/internal/models"
	"repairhub/internal/store"
)

const (
	sendTimeout    = 15 * time.Second
	enqueueTimeout = 5 * time.Second
	baseBackoff    = 30 * time.Second
	maxBackoff     = time.Hour
	retryBatch     = 100
)

// Dispatcher sends pushes off the request path. A failed push is parked in
// the outbox and retried by Retry.
type Dispatcher struct {
	pusher Pusher
	outbox store.OutboxStore
	log    *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup

	sendTimeout time.Duration
}

func NewDispatcher(pusher Pusher, outbox store.OutboxStore) *Dispatcher {
	return &Dispatcher{
		pusher: pusher,
		outbox: outbox,
		log:    zap.L().Named("push"),
		now:    time.Now,

		sendTimeout: sendTimeout,
	}
}

// Notify fires a push and returns immediately. An empty token is a no-op.
func (d *Dispatcher) Notify(token, title, body string) {
	if token == "" {
		metrics.PushDeliveries.WithLabelValues("skipped").Inc()
		return
	}
	msg := models.PushMessage{To: token, Title: title, Body: body}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := d.pusher.Send(ctx, msg)
		cancel()
		if err == nil {
			metrics.PushDeliveries.WithLabelValues("sent").Inc()
			return
		}
		metrics.PushDeliveries.WithLabelValues("failed").Inc()
		d.log.Warn("push failed, queued for retry", zap.String("title", title), zap.Error(err))

		now := d.now()
		entry := &models.PushOutboxEntry{
			Message:     msg,
			State:       models.OutboxPending,
			Attempts:    1,
			LastError:   err.Error(),
			NextAttempt: now.Add(Backoff(1)),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		// The send context is spent; the enqueue gets its own deadline.
		enqueueCtx, cancelEnqueue := context.WithTimeout(context.Background(), enqueueTimeout)
		defer cancelEnqueue()
		if err := d.outbox.Enqueue(enqueueCtx, entry); err != nil {
			d.log.Error("enqueue push", zap.Error(err))
		}
	}()
}

// Retry resends every due outbox entry once. Entries reaching maxAttempts
// are marked dead.
func (d *Dispatcher) Retry(ctx context.Context, maxAttempts int) (sent, failed int, err error) {
	now := d.now()
	due, err := d.outbox.Due(ctx, now, retryBatch)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range due {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		sendErr := d.pusher.Send(sendCtx, entry.Message)
		cancel()

		if sendErr == nil {
			metrics.PushDeliveries.WithLabelValues("retried").Inc()
			if err := d.outbox.MarkSent(ctx, entry.ID); err != nil {
				d.log.Error("mark push sent", zap.String("id", entry.ID.Hex()), zap.Error(err))
			}
			sent++
			continue
		}

		failed++
		attempts := entry.Attempts + 1
		dead := attempts >= maxAttempts
		if dead {
			metrics.PushDeliveries.WithLabelValues("dead").Inc()
			d.log.Warn("push abandoned", zap.String("id", entry.ID.Hex()), zap.Int("attempts", attempts), zap.Error(sendErr))
		}
		if err := d.outbox.MarkFailed(ctx, entry.ID, attempts, sendErr.Error(), now.Add(Backoff(attempts)), dead); err != nil {
			d.log.Error("mark push failed", zap.String("id", entry.ID.Hex()), zap.Error(err))
		}
	}
	return sent, failed, nil
}

// Wait blocks until in-flight pushes finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Backoff is 30s doubled per prior attempt, capped at one hour.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := baseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
