package embedding

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/projectgen/internal/cache"
)

type flakyProvider struct {
	failures int
	calls    int
	err      error
}

func (f *flakyProvider) Model() string { return "fake-embed" }

func (f *flakyProvider) Embed(_ context.Context, text string, _ Task) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{Initial: time.Millisecond, Max: 2 * time.Millisecond, MaxAttempts: attempts}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	p := &flakyProvider{failures: 2, err: errors.New("429 too many requests")}
	r := WithRetry(p, fastPolicy(10), quietLogger())

	vec, err := r.Embed(context.Background(), "abc", TaskQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 1}, vec)
	assert.Equal(t, 3, p.calls)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	upstream := errors.New("503 unavailable")
	p := &flakyProvider{failures: 100, err: upstream}
	r := WithRetry(p, fastPolicy(4), quietLogger())

	_, err := r.Embed(context.Background(), "abc", TaskQuery)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, 4, p.calls)
}

func TestRetryStopsOnContextErrors(t *testing.T) {
	p := &flakyProvider{failures: 100, err: context.DeadlineExceeded}
	r := WithRetry(p, fastPolicy(10), quietLogger())

	_, err := r.Embed(context.Background(), "abc", TaskQuery)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, p.calls)
}

func TestRetryHonoursCancelledContext(t *testing.T) {
	p := &flakyProvider{failures: 100, err: errors.New("boom")}
	policy := RetryPolicy{Initial: time.Hour, Max: time.Hour, MaxAttempts: 10}
	r := WithRetry(p, policy, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Embed(ctx, "abc", TaskQuery)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, p.calls)
}

func TestCacheMemoizesQueriesOnly(t *testing.T) {
	p := &flakyProvider{}
	c := WithCache(p, cache.NewMemoryCache(), time.Hour, quietLogger())
	ctx := context.Background()

	_, err := c.Embed(ctx, "Data  Lake", TaskQuery)
	require.NoError(t, err)
	vec, err := c.Embed(ctx, "data lake", TaskQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{10, 1}, vec, "normalized prompt should hit the first entry")
	assert.Equal(t, 1, p.calls)

	_, _ = c.Embed(ctx, "data lake", TaskDocument)
	_, _ = c.Embed(ctx, "data lake", TaskDocument)
	assert.Equal(t, 3, p.calls)
}

func TestWithCacheNilIsPassthrough(t *testing.T) {
	p := &flakyProvider{}
	assert.Same(t, Provider(p), WithCache(p, nil, time.Hour, nil))
}

func TestCacheForNamedTasks(t *testing.T) {
	p := &flakyProvider{}
	c := WithCache(p, cache.NewMemoryCache(), 0, quietLogger(), TaskDocument)
	ctx := context.Background()

	_, _ = c.Embed(ctx, "AZ-104", TaskDocument)
	_, _ = c.Embed(ctx, "az-104", TaskDocument)
	assert.Equal(t, 1, p.calls)

	_, _ = c.Embed(ctx, "AZ-104", TaskQuery)
	assert.Equal(t, 2, p.calls)
}
