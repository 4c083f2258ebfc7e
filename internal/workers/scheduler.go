package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, source string) (string, error)
}

// RunScheduler enqueues a reindex of source every interval until ctx ends.
// It returns immediately when interval is not positive.
func RunScheduler(ctx context.Context, q Enqueuer, source string, interval time.Duration, l *logrus.Logger) {
	if interval <= 0 || source == "" {
		return
	}
	if l == nil {
		l = logrus.New()
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			jobID, err := q.Enqueue(ctx, source)
			if err != nil {
				l.WithError(err).WithField("source", source).Warn("scheduled reindex enqueue failed")
				continue
			}
			l.WithFields(logrus.Fields{"job_id": jobID, "source": source}).Info("scheduled reindex enqueued")
		}
	}
}
