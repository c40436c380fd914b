package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"repairhub/internal/models"
)

type fakePusher struct {
	mu   sync.Mutex
	err  error
	sent []models.PushMessage
}

func (f *fakePusher) Send(_ context.Context, msg models.PushMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

type failedMark struct {
	attempts int
	next     time.Time
	dead     bool
}

type fakeOutbox struct {
	mu       sync.Mutex
	enqueued []models.PushOutboxEntry
	due      []models.PushOutboxEntry
	sentIDs  []primitive.ObjectID
	failed   map[primitive.ObjectID]failedMark
}

func (f *fakeOutbox) Enqueue(ctx context.Context, e *models.PushOutboxEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, *e)
	return nil
}

func (f *fakeOutbox) Due(context.Context, time.Time, int64) ([]models.PushOutboxEntry, error) {
	return f.due, nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, id primitive.ObjectID) error {
	f.sentIDs = append(f.sentIDs, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id primitive.ObjectID, attempts int, _ string, next time.Time, dead bool) error {
	if f.failed == nil {
		f.failed = map[primitive.ObjectID]failedMark{}
	}
	f.failed[id] = failedMark{attempts: attempts, next: next, dead: dead}
	return nil
}

func TestNotifySkipsEmptyToken(t *testing.T) {
	p := &fakePusher{}
	d := NewDispatcher(p, &fakeOutbox{})
	d.Notify("", "title", "body")
	d.Wait()
	assert.Empty(t, p.sent)
}

func TestNotifyQueuesFailedPush(t *testing.T) {
	p := &fakePusher{err: errors.New("unreachable")}
	outbox := &fakeOutbox{}
	d := NewDispatcher(p, outbox)
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	d.Notify("token", "Order", "Accepted")
	d.Wait()

	require.Len(t, outbox.enqueued, 1)
	entry := outbox.enqueued[0]
	assert.Equal(t, "token", entry.Message.To)
	assert.Equal(t, 1, entry.Attempts)
	assert.Equal(t, "unreachable", entry.LastError)
	assert.Equal(t, fixed.Add(30*time.Second), entry.NextAttempt)
}

func TestNotifyDeliversWithoutQueueing(t *testing.T) {
	p := &fakePusher{}
	outbox := &fakeOutbox{}
	d := NewDispatcher(p, outbox)

	d.Notify("token", "Order", "Repaired")
	d.Wait()

	assert.Len(t, p.sent, 1)
	assert.Empty(t, outbox.enqueued)
}

func TestRetry(t *testing.T) {
	ok := models.PushOutboxEntry{ID: primitive.NewObjectID(), Message: models.PushMessage{To: "a"}, Attempts: 1}
	last := models.PushOutboxEntry{ID: primitive.NewObjectID(), Message: models.PushMessage{To: "b"}, Attempts: 4}

	t.Run("success marks sent", func(t *testing.T) {
		outbox := &fakeOutbox{due: []models.PushOutboxEntry{ok}}
		d := NewDispatcher(&fakePusher{}, outbox)
		sent, failed, err := d.Retry(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Zero(t, failed)
		assert.Equal(t, []primitive.ObjectID{ok.ID}, outbox.sentIDs)
	})

	t.Run("failure backs off and dies at the limit", func(t *testing.T) {
		outbox := &fakeOutbox{due: []models.PushOutboxEntry{ok, last}}
		d := NewDispatcher(&fakePusher{err: errors.New("down")}, outbox)
		fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		d.now = func() time.Time { return fixed }

		sent, failed, err := d.Retry(context.Background(), 5)
		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Equal(t, 2, failed)

		assert.Equal(t, failedMark{attempts: 2, next: fixed.Add(time.Minute)}, outbox.failed[ok.ID])
		assert.True(t, outbox.failed[last.ID].dead)
		assert.Equal(t, 5, outbox.failed[last.ID].attempts)
	})
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 30*time.Second, Backoff(0))
	assert.Equal(t, 30*time.Second, Backoff(1))
	assert.Equal(t, time.Minute, Backoff(2))
	assert.Equal(t, 4*time.Minute, Backoff(4))
	assert.Equal(t, time.Hour, Backoff(20))
}

// hangingPusher blocks until the send deadline passes.
type hangingPusher struct{}

func (hangingPusher) Send(ctx context.Context, _ models.PushMessage) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNotifyQueuesTimedOutPush(t *testing.T) {
	outbox := &fakeOutbox{}
	d := NewDispatcher(hangingPusher{}, outbox)
	d.sendTimeout = 20 * time.Millisecond

	d.Notify("ExponentPushToken[abc]", "Accepted", "Your order is accepted")
	d.Wait()

	outbox.mu.Lock()
	defer outbox.mu.Unlock()
	require.Len(t, outbox.enqueued, 1)
	assert.Equal(t, "ExponentPushToken[abc]", outbox.enqueued[0].Message.To)
	assert.Contains(t, outbox.enqueued[0].LastError, context.DeadlineExceeded.Error())
}
