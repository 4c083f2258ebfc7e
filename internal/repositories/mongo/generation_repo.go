package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GenerationRepository interface {
	Insert(ctx context.Context, g *models.Generation) error
	GetByGenerationID(ctx context.Context, generationID string) (*models.Generation, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Generation, error)
}

type generationRepo struct {
	col *mongo.Collection
}

func NewGenerationRepo(db *mongo.Database) GenerationRepository {
	return &generationRepo{col: db.Collection("generations")}
}

func (r *generationRepo) Insert(ctx context.Context, g *models.Generation) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, g)
	return err
}

func (r *generationRepo) GetByGenerationID(ctx context.Context, generationID string) (*models.Generation, error) {
	var g models.Generation
	err := r.col.FindOne(ctx, bson.M{"generation_id": generationID}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &g, err
}

func (r *generationRepo) ListRecent(ctx context.Context, limit int64) ([]models.Generation, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Generation, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
