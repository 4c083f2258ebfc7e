package services

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/projectgen/internal/models"
	mongorepo "github.com/yoockh/projectgen/internal/repositories/mongo"
	"github.com/yoockh/projectgen/internal/utils"
)

type GenerationService interface {
	Record(ctx context.Context, g *models.Generation) error
	Get(ctx context.Context, generationID string) (*models.Generation, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Generation, error)
}

type generationService struct {
	generations mongorepo.GenerationRepository
	ttl         time.Duration
}

func NewGenerationService(generations mongorepo.GenerationRepository, ttl time.Duration) GenerationService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &generationService{generations: generations, ttl: ttl}
}

func (s *generationService) Record(ctx context.Context, g *models.Generation) error {
	const op = "GenerationService.Record"

	if g == nil || g.GenerationID == "" || g.Prompt == "" {
		return utils.E(utils.CodeInvalidArgument, op, "generation_id and prompt are required", nil)
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.ExpiresAt = g.CreatedAt.Add(s.ttl)

	if err := s.generations.Insert(ctx, g); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to store generation", err)
	}
	return nil
}

func (s *generationService) Get(ctx context.Context, generationID string) (*models.Generation, error) {
	const op = "GenerationService.Get"

	if generationID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "generation_id is required", nil)
	}
	g, err := s.generations.GetByGenerationID(ctx, generationID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "generation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get generation", err)
	}
	return g, nil
}

func (s *generationService) ListRecent(ctx context.Context, limit int64) ([]models.Generation, error) {
	const op = "GenerationService.ListRecent"

	out, err := s.generations.ListRecent(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list generations", err)
	}
	return out, nil
}
