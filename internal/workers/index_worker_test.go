package workers

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/projectgen/internal/services"
	"github.com/yoockh/projectgen/internal/utils"
)

type fakeCatalog struct {
	sources []string
	report  *services.IngestReport
	err     error
}

func (f *fakeCatalog) EnsureSchema(context.Context) error { return nil }

func (f *fakeCatalog) Ingest(_ context.Context, source string) (*services.IngestReport, error) {
	f.sources = append(f.sources, source)
	return f.report, f.err
}

func (f *fakeCatalog) Count(context.Context) (int64, error) { return 0, nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestPool(cat *fakeCatalog) (*IndexWorkerPool, *[]IndexStatus) {
	var got []IndexStatus
	p := &IndexWorkerPool{
		Catalog:       cat,
		Logger:        quietLogger(),
		DefaultSource: "gs://catalog/default.json",
		notify: func(_ context.Context, st IndexStatus) {
			got = append(got, st)
		},
	}
	p.defaults()
	return p, &got
}

func TestHandleMsgRunsIngest(t *testing.T) {
	cat := &fakeCatalog{report: &services.IngestReport{Total: 4, Indexed: 3, Skipped: 1}}
	p, got := newTestPool(cat)

	p.handleMsg(context.Background(), redis.XMessage{
		ID:     "1-0",
		Values: map[string]any{"job_id": "job-1", "source": "./catalog.json"},
	})

	assert.Equal(t, []string{"./catalog.json"}, cat.sources)
	require.Len(t, *got, 2)
	assert.Equal(t, StatusRunning, (*got)[0].Status)

	done := (*got)[1]
	assert.Equal(t, StatusDone, done.Status)
	assert.Equal(t, "job-1", done.JobID)
	assert.Equal(t, 3, done.Indexed)
	assert.Equal(t, 1, done.Skipped)
}

func TestHandleMsgFallsBackToDefaultSource(t *testing.T) {
	cat := &fakeCatalog{report: &services.IngestReport{}}
	p, got := newTestPool(cat)

	p.handleMsg(context.Background(), redis.XMessage{ID: "2-0", Values: map[string]any{}})

	assert.Equal(t, []string{"gs://catalog/default.json"}, cat.sources)
	require.NotEmpty(t, *got)
	assert.Equal(t, "2-0", (*got)[0].JobID)
}

func TestHandleMsgWithoutAnySource(t *testing.T) {
	cat := &fakeCatalog{}
	p, got := newTestPool(cat)
	p.DefaultSource = ""

	p.handleMsg(context.Background(), redis.XMessage{ID: "3-0", Values: map[string]any{}})

	assert.Empty(t, cat.sources)
	require.Len(t, *got, 1)
	assert.Equal(t, StatusFailed, (*got)[0].Status)
}

func TestHandleMsgReportsFailure(t *testing.T) {
	cat := &fakeCatalog{
		report: &services.IngestReport{Total: 10, Indexed: 5},
		err:    utils.E(utils.CodeUnavailable, "CatalogService.Ingest", "failed to embed record 5", errors.New("quota")),
	}
	p, got := newTestPool(cat)

	p.handleMsg(context.Background(), redis.XMessage{ID: "4-0", Values: map[string]any{"source": "x.json"}})

	require.Len(t, *got, 2)
	last := (*got)[1]
	assert.Equal(t, StatusFailed, last.Status)
	assert.Equal(t, "failed to embed record 5", last.Message)
	assert.Equal(t, 5, last.Indexed)
}

func TestStartRequiresDependencies(t *testing.T) {
	p := &IndexWorkerPool{}
	assert.Error(t, p.Start(context.Background()))
}

type countingEnqueuer struct {
	mu      sync.Mutex
	sources []string
}

func (c *countingEnqueuer) Enqueue(_ context.Context, source string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, source)
	return "job", nil
}

func (c *countingEnqueuer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sources)
}

func TestRunSchedulerEnqueuesUntilCancelled(t *testing.T) {
	q := &countingEnqueuer{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunScheduler(ctx, q, "catalog.json", 10*time.Millisecond, quietLogger())
		close(done)
	}()

	require.Eventually(t, func() bool { return q.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRunSchedulerDisabled(t *testing.T) {
	q := &countingEnqueuer{}
	RunScheduler(context.Background(), q, "catalog.json", 0, quietLogger())
	RunScheduler(context.Background(), q, "", time.Millisecond, quietLogger())
	assert.Zero(t, q.count())
}
