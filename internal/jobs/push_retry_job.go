// Package jobs runs the scheduled background work of the service.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Retrier resends parked pushes.
type Retrier interface {
	Retry(ctx context.Context, maxAttempts int) (sent, failed int, err error)
}

// PushRetryJob drains the push outbox on a cron schedule.
type PushRetryJob struct {
	retrier     Retrier
	schedule    string
	maxAttempts int
	timeout     time.Duration
	cron        *cron.Cron
	logger      *zap.Logger
}

func NewPushRetryJob(retrier Retrier, schedule string, maxAttempts int) *PushRetryJob {
	return &PushRetryJob{
		retrier:     retrier,
		schedule:    schedule,
		maxAttempts: maxAttempts,
		timeout:     time.Minute,
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:      zap.L().Named("jobs").With(zap.String("job", "push_retry")),
	}
}

// Start registers the job and starts the scheduler. The schedule accepts
// standard five-field specs and descriptors such as "@every 1m".
func (j *PushRetryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("push retry job started", zap.String("schedule", j.schedule))
	return nil
}

// Run executes one pass.
func (j *PushRetryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	sent, failed, err := j.retrier.Retry(ctx, j.maxAttempts)
	if err != nil {
		j.logger.Error("push retry failed", zap.Error(err))
		return
	}
	if sent > 0 || failed > 0 {
		j.logger.Info("push retry pass", zap.Int("sent", sent), zap.Int("failed", failed))
	}
}

// Stop halts the scheduler and waits for a running pass.
func (j *PushRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("push retry job stopped")
}
