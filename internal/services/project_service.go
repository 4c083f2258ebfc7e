package services

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/projectgen/internal/cache"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/providers/llm"
	"github.com/yoockh/projectgen/internal/utils"
)

// ProjectResult is what a generation produced. Cached is set when the
// answer was served from the response cache.
type ProjectResult struct {
	GenerationID string                `json:"generation_id"`
	Project      string                `json:"project"`
	Matches      []models.CatalogMatch `json:"matches"`
	Cached       bool                  `json:"-"`
}

// StreamHooks receive progress while a project idea is streamed.
type StreamHooks struct {
	OnMatches func(matches []models.CatalogMatch)
	OnChunk   func(seq int64, chunk string)
}

type ProjectService interface {
	Generate(ctx context.Context, prompt, source string) (*ProjectResult, error)
	Stream(ctx context.Context, prompt, source string, hooks StreamHooks) (*ProjectResult, error)
}

type ProjectOptions struct {
	TopK           int
	MaxPromptChars int
	CacheTTL       time.Duration
}

type projectService struct {
	search      SearchService
	llm         llm.Provider
	generations GenerationService
	cache       cache.Cache
	opts        ProjectOptions
	log         *logrus.Logger
	now         func() time.Time
}

// NewProjectService wires the generation flow. generations and c may be nil:
// history is then not kept and responses are not cached.
func NewProjectService(search SearchService, provider llm.Provider, generations GenerationService, c cache.Cache, opts ProjectOptions, l *logrus.Logger) ProjectService {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.MaxPromptChars <= 0 {
		opts.MaxPromptChars = 2000
	}
	if l == nil {
		l = logrus.New()
	}
	return &projectService{
		search:      search,
		llm:         provider,
		generations: generations,
		cache:       c,
		opts:        opts,
		log:         l,
		now:         time.Now,
	}
}

func (s *projectService) validate(op, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "prompt is required", nil)
	}
	if utf8.RuneCountInString(prompt) > s.opts.MaxPromptChars {
		return "", utils.E(utils.CodeInvalidArgument, op, "prompt is too long (max "+strconv.Itoa(s.opts.MaxPromptChars)+" characters)", nil)
	}
	return prompt, nil
}

func (s *projectService) cacheKey(prompt string) string {
	return cache.Key("project", s.llm.Model(), strconv.Itoa(s.opts.TopK), cache.Normalize(prompt))
}

func (s *projectService) Generate(ctx context.Context, prompt, source string) (*ProjectResult, error) {
	const op = "ProjectService.Generate"

	prompt, err := s.validate(op, prompt)
	if err != nil {
		return nil, err
	}

	useCache := s.cache != nil && s.opts.CacheTTL > 0
	if useCache {
		var hit ProjectResult
		ok, err := s.cache.GetJSON(ctx, s.cacheKey(prompt), &hit)
		if err != nil {
			s.log.WithError(err).Warn("project cache read failed")
		}
		if ok && hit.Project != "" {
			hit.Cached = true
			return &hit, nil
		}
	}

	start := s.now()

	matches, err := s.search.VectorSearch(ctx, prompt, s.opts.TopK)
	if err != nil {
		return nil, err
	}

	project, err := s.llm.Complete(ctx, BuildMessages(prompt, matches))
	if err != nil {
		return nil, utils.Upstream(op, "failed to generate project idea", err)
	}

	res := &ProjectResult{
		GenerationID: uuid.NewString(),
		Project:      project,
		Matches:      matches,
	}
	s.record(ctx, res, prompt, source, start)

	if useCache {
		if err := s.cache.SetJSON(ctx, s.cacheKey(prompt), res, s.opts.CacheTTL); err != nil {
			s.log.WithError(err).Warn("project cache write failed")
		}
	}
	return res, nil
}

func (s *projectService) Stream(ctx context.Context, prompt, source string, hooks StreamHooks) (*ProjectResult, error) {
	const op = "ProjectService.Stream"

	prompt, err := s.validate(op, prompt)
	if err != nil {
		return nil, err
	}

	start := s.now()

	matches, err := s.search.VectorSearch(ctx, prompt, s.opts.TopK)
	if err != nil {
		return nil, err
	}
	if hooks.OnMatches != nil {
		hooks.OnMatches(matches)
	}

	chunks, errs := s.llm.StreamAnswer(ctx, BuildMessages(prompt, matches))

	var full strings.Builder
	seq := int64(0)
	for chunk := range chunks {
		seq++
		full.WriteString(chunk)
		if hooks.OnChunk != nil {
			hooks.OnChunk(seq, chunk)
		}
	}
	// the provider closes errs before it returns, so this cannot block
	if streamErr := <-errs; streamErr != nil {
		return nil, utils.Upstream(op, "failed to stream project idea", streamErr)
	}
	if strings.TrimSpace(full.String()) == "" {
		return nil, utils.Upstream(op, "failed to stream project idea", llm.ErrEmptyCompletion)
	}

	res := &ProjectResult{
		GenerationID: uuid.NewString(),
		Project:      full.String(),
		Matches:      matches,
	}
	s.record(ctx, res, prompt, source, start)
	return res, nil
}

// record stores history. A failure here never fails the request.
func (s *projectService) record(ctx context.Context, res *ProjectResult, prompt, source string, start time.Time) {
	if s.generations == nil {
		return
	}
	now := s.now()
	g := &models.Generation{
		GenerationID: res.GenerationID,
		Prompt:       prompt,
		Source:       source,
		Matches:      res.Matches,
		Project:      res.Project,
		Model:        s.llm.Model(),
		LatencyMS:    now.Sub(start).Milliseconds(),
		CreatedAt:    now.UTC(),
	}
	if err := s.generations.Record(ctx, g); err != nil {
		s.log.WithError(err).WithField("generation_id", res.GenerationID).Warn("failed to record generation")
	}
}
