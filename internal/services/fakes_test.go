package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/providers/embedding"
	"github.com/yoockh/projectgen/internal/providers/llm"
	"github.com/yoockh/projectgen/internal/utils"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeEmbedder struct {
	calls []string
	tasks []embedding.Task
	dims  int
	err   error
}

func (f *fakeEmbedder) Model() string { return "fake-embed" }

func (f *fakeEmbedder) Embed(_ context.Context, text string, task embedding.Task) ([]float32, error) {
	f.calls = append(f.calls, text)
	f.tasks = append(f.tasks, task)
	if f.err != nil {
		return nil, f.err
	}
	dims := f.dims
	if dims == 0 {
		dims = 3
	}
	v := make([]float32, dims)
	v[0] = float32(len(text))
	return v, nil
}

type fakeCatalogRepo struct {
	mu          sync.Mutex
	entries     map[string]models.CatalogEntry
	matches     []models.CatalogMatch
	lastK       int
	lastVec     []float32
	upserts     int
	repeatedIDs int // upsert calls carrying one id more than once
	ensured     int
	err         error
	countErr    error
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{entries: map[string]models.CatalogEntry{}}
}

func (f *fakeCatalogRepo) EnsureSchema(_ context.Context, dims int) error {
	f.ensured = dims
	return f.err
}

func (f *fakeCatalogRepo) Upsert(_ context.Context, entries []models.CatalogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.ID] {
			f.repeatedIDs++
		}
		seen[e.ID] = true
		f.entries[e.ID] = e
	}
	return nil
}

func (f *fakeCatalogRepo) SearchNearest(_ context.Context, vec []float32, k int) ([]models.CatalogMatch, error) {
	f.lastK = k
	f.lastVec = vec
	if f.err != nil {
		return nil, f.err
	}
	if len(f.matches) > k {
		return f.matches[:k], nil
	}
	return f.matches, nil
}

func (f *fakeCatalogRepo) Count(context.Context) (int64, error) {
	return int64(len(f.entries)), f.countErr
}

type fakeSearch struct {
	matches []models.CatalogMatch
	err     error
	calls   int
	lastK   int
}

func (f *fakeSearch) VectorSearch(_ context.Context, _ string, k int) ([]models.CatalogMatch, error) {
	f.calls++
	f.lastK = k
	return f.matches, f.err
}

type fakeLLM struct {
	answer    string
	chunks    []string
	err       error
	streamErr error
	got       []llm.Message
	calls     int
}

func (f *fakeLLM) Model() string { return "fake-gemini" }
func (f *fakeLLM) Close() error  { return nil }

func (f *fakeLLM) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	f.calls++
	f.got = msgs
	return f.answer, f.err
}

func (f *fakeLLM) StreamAnswer(_ context.Context, msgs []llm.Message) (<-chan string, <-chan error) {
	f.calls++
	f.got = msgs
	out := make(chan string, len(f.chunks))
	errs := make(chan error, 1)
	for _, c := range f.chunks {
		out <- c
	}
	if f.streamErr != nil {
		errs <- f.streamErr
	}
	close(errs)
	close(out)
	return out, errs
}

type fakeGenerationRepo struct {
	mu   sync.Mutex
	rows []models.Generation
	err  error
}

func (f *fakeGenerationRepo) Insert(_ context.Context, g *models.Generation) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *g)
	return nil
}

func (f *fakeGenerationRepo) GetByGenerationID(_ context.Context, id string) (*models.Generation, error) {
	for _, r := range f.rows {
		if r.GenerationID == id {
			r := r
			return &r, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeGenerationRepo) ListRecent(_ context.Context, limit int64) ([]models.Generation, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Generation, 0, len(f.rows))
	for i := len(f.rows) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, f.rows[i])
	}
	return out, nil
}

type fakeKeyRepo struct {
	rows map[string]*models.FunctionKey
}

func newFakeKeyRepo() *fakeKeyRepo { return &fakeKeyRepo{rows: map[string]*models.FunctionKey{}} }

func (f *fakeKeyRepo) Insert(_ context.Context, k *models.FunctionKey) error {
	if _, ok := f.rows[k.ID]; ok {
		return errors.New("duplicate key")
	}
	cp := *k
	f.rows[k.ID] = &cp
	return nil
}

func (f *fakeKeyRepo) GetByID(_ context.Context, id string) (*models.FunctionKey, error) {
	k, ok := f.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (f *fakeKeyRepo) Revoke(_ context.Context, id string, at time.Time) error {
	k, ok := f.rows[id]
	if !ok || k.RevokedAt != nil {
		return utils.ErrNotFound
	}
	k.RevokedAt = &at
	return nil
}

type stringReader map[string]string

func (s stringReader) Open(_ context.Context, location string) (io.ReadCloser, error) {
	body, ok := s[location]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type fakeSTT struct {
	text     string
	err      error
	language string
}

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, language string) (string, float64, error) {
	f.language = language
	return f.text, 0.9, f.err
}

func (f *fakeSTT) Close() error { return nil }
