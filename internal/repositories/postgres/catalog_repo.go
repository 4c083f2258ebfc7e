package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/yoockh/projectgen/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	EnsureSchema(ctx context.Context, dimensions int) error
	Upsert(ctx context.Context, entries []models.CatalogEntry) error
	SearchNearest(ctx context.Context, vector []float32, k int) ([]models.CatalogMatch, error)
	Count(ctx context.Context) (int64, error)
}

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

// EnsureSchema is idempotent: extension, table, vector width and HNSW index.
func (r *catalogRepo) EnsureSchema(ctx context.Context, dimensions int) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	if err := db.AutoMigrate(&models.CatalogEntry{}, &models.FunctionKey{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	alter := fmt.Sprintf("ALTER TABLE catalog_entries ALTER COLUMN certification_name_vector TYPE vector(%d)", dimensions)
	if err := db.Exec(alter).Error; err != nil {
		return fmt.Errorf("set vector dimensions: %w", err)
	}
	const idx = "CREATE INDEX IF NOT EXISTS catalog_entries_cert_vector_hnsw ON catalog_entries USING hnsw (certification_name_vector vector_cosine_ops)"
	if err := db.Exec(idx).Error; err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}
	return nil
}

func (r *catalogRepo) Upsert(ctx context.Context, entries []models.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"certification_name", "service_name", "category", "skills", "metadata", "certification_name_vector", "indexed_at"}),
		}).
		CreateInBatches(entries, 100).Error
}

func (r *catalogRepo) SearchNearest(ctx context.Context, vector []float32, k int) ([]models.CatalogMatch, error) {
	v := pgvector.NewVector(vector)

	var rows []models.CatalogMatch
	err := r.db.WithContext(ctx).
		Model(&models.CatalogEntry{}).
		Select("certification_name, service_name, category, 1 - (certification_name_vector <=> ?) AS score", v).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "certification_name_vector <=> ?", Vars: []any{v}},
		}).
		Limit(k).
		Scan(&rows).Error
	return rows, err
}

func (r *catalogRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CatalogEntry{}).Count(&n).Error
	return n, err
}
