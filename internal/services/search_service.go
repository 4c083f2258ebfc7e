package services

import (
	"context"
	"strings"

	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/providers/embedding"
	pgrepo "github.com/yoockh/projectgen/internal/repositories/postgres"
	"github.com/yoockh/projectgen/internal/utils"
)

type SearchService interface {
	VectorSearch(ctx context.Context, query string, k int) ([]models.CatalogMatch, error)
}

type searchService struct {
	embedder embedding.Provider
	catalog  pgrepo.CatalogRepository
}

func NewSearchService(embedder embedding.Provider, catalog pgrepo.CatalogRepository) SearchService {
	return &searchService{embedder: embedder, catalog: catalog}
}

func (s *searchService) VectorSearch(ctx context.Context, query string, k int) ([]models.CatalogMatch, error) {
	const op = "SearchService.VectorSearch"

	if strings.TrimSpace(query) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "query is required", nil)
	}
	if k <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "k must be > 0", nil)
	}

	vec, err := s.embedder.Embed(ctx, query, embedding.TaskQuery)
	if err != nil {
		return nil, utils.Upstream(op, "failed to embed query", err)
	}

	matches, err := s.catalog.SearchNearest(ctx, vec, k)
	if err != nil {
		return nil, utils.Upstream(op, "vector search failed", err)
	}
	return matches, nil
}
