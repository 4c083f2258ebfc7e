package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/providers/embedding"
	"github.com/yoockh/projectgen/internal/utils"
)

func TestVectorSearchEmbedsQueryAndSearches(t *testing.T) {
	emb := &fakeEmbedder{}
	repo := newFakeCatalogRepo()
	repo.matches = []models.CatalogMatch{
		{ServiceName: "Azure Functions"}, {ServiceName: "Azure Cosmos DB"},
		{ServiceName: "Azure Storage"}, {ServiceName: "Azure Monitor"},
	}
	svc := NewSearchService(emb, repo)

	got, err := svc.VectorSearch(context.Background(), "serverless", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 3, repo.lastK)
	assert.Equal(t, []string{"serverless"}, emb.calls)
	assert.Equal(t, []embedding.Task{embedding.TaskQuery}, emb.tasks)
	assert.Equal(t, float32(len("serverless")), repo.lastVec[0])
}

func TestVectorSearchValidation(t *testing.T) {
	svc := NewSearchService(&fakeEmbedder{}, newFakeCatalogRepo())

	_, err := svc.VectorSearch(context.Background(), "  ", 3)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.VectorSearch(context.Background(), "q", 0)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestVectorSearchUpstreamErrors(t *testing.T) {
	svc := NewSearchService(&fakeEmbedder{err: errors.New("quota")}, newFakeCatalogRepo())
	_, err := svc.VectorSearch(context.Background(), "q", 3)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))

	svc = NewSearchService(&fakeEmbedder{err: context.DeadlineExceeded}, newFakeCatalogRepo())
	_, err = svc.VectorSearch(context.Background(), "q", 3)
	assert.True(t, utils.IsCode(err, utils.CodeTimeout))

	repo := newFakeCatalogRepo()
	repo.err = errors.New("connection refused")
	svc = NewSearchService(&fakeEmbedder{}, repo)
	_, err = svc.VectorSearch(context.Background(), "q", 3)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}

func TestVectorSearchEmptyIndex(t *testing.T) {
	svc := NewSearchService(&fakeEmbedder{}, newFakeCatalogRepo())
	got, err := svc.VectorSearch(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}
