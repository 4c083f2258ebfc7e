package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/googleapis/gax-go/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RetryPolicy mirrors a randomized exponential wait: each pause is drawn
// from (0, current], current doubles from Initial up to Max.
type RetryPolicy struct {
	Initial     time.Duration
	Max         time.Duration
	MaxAttempts int
	// MinInterval spaces calls to the upstream model. Zero disables throttling.
	MinInterval time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Initial:     time.Second,
		Max:         20 * time.Second,
		MaxAttempts: 10,
		MinInterval: 500 * time.Millisecond,
	}
}

type retrying struct {
	next    Provider
	policy  RetryPolicy
	limiter *rate.Limiter
	log     *logrus.Logger
}

// WithRetry wraps p so transient failures are retried and calls are
// throttled according to policy.
func WithRetry(p Provider, policy RetryPolicy, l *logrus.Logger) Provider {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if l == nil {
		l = logrus.New()
	}
	r := &retrying{next: p, policy: policy, log: l}
	if policy.MinInterval > 0 {
		r.limiter = rate.NewLimiter(rate.Every(policy.MinInterval), 1)
	}
	return r
}

func (r *retrying) Model() string { return r.next.Model() }

func (r *retrying) Embed(ctx context.Context, text string, task Task) ([]float32, error) {
	bo := gax.Backoff{
		Initial:    r.policy.Initial,
		Max:        r.policy.Max,
		Multiplier: 2,
	}

	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vec, err := r.next.Embed(ctx, text, task)
		if err == nil {
			return vec, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		lastErr = err
		if attempt == r.policy.MaxAttempts {
			break
		}

		pause := bo.Pause()
		r.log.WithFields(logrus.Fields{
			"model":   r.next.Model(),
			"attempt": attempt,
			"pause":   pause.String(),
		}).WithError(err).Warn("embedding failed, retrying")

		if err := gax.Sleep(ctx, pause); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("embedding gave up after %d attempts: %w", r.policy.MaxAttempts, lastErr)
}
