package embedding

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/projectgen/internal/cache"
)

type cached struct {
	next  Provider
	c     cache.Cache
	ttl   time.Duration
	tasks map[Task]bool
	log   *logrus.Logger
}

// WithCache memoizes embeddings for the given tasks, TaskQuery when none are
// named. Other tasks go straight to p.
func WithCache(p Provider, c cache.Cache, ttl time.Duration, l *logrus.Logger, tasks ...Task) Provider {
	if c == nil {
		return p
	}
	if l == nil {
		l = logrus.New()
	}
	if len(tasks) == 0 {
		tasks = []Task{TaskQuery}
	}
	set := make(map[Task]bool, len(tasks))
	for _, t := range tasks {
		set[t] = true
	}
	return &cached{next: p, c: c, ttl: ttl, tasks: set, log: l}
}

func (e *cached) Model() string { return e.next.Model() }

func (e *cached) Embed(ctx context.Context, text string, task Task) ([]float32, error) {
	if !e.tasks[task] {
		return e.next.Embed(ctx, text, task)
	}

	key := cache.Key("embedding", e.next.Model(), string(task), cache.Normalize(text))

	var vec []float32
	hit, err := e.c.GetJSON(ctx, key, &vec)
	if err != nil {
		e.log.WithError(err).Warn("embedding cache read failed")
	}
	if hit && len(vec) > 0 {
		return vec, nil
	}

	vec, err = e.next.Embed(ctx, text, task)
	if err != nil {
		return nil, err
	}
	if err := e.c.SetJSON(ctx, key, vec, e.ttl); err != nil {
		e.log.WithError(err).Warn("embedding cache write failed")
	}
	return vec, nil
}
