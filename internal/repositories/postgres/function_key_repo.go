package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/utils"
	"gorm.io/gorm"
)

type FunctionKeyRepository interface {
	Insert(ctx context.Context, k *models.FunctionKey) error
	GetByID(ctx context.Context, id string) (*models.FunctionKey, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}

type functionKeyRepo struct {
	db *gorm.DB
}

func NewFunctionKeyRepo(db *gorm.DB) FunctionKeyRepository {
	return &functionKeyRepo{db: db}
}

func (r *functionKeyRepo) Insert(ctx context.Context, k *models.FunctionKey) error {
	return r.db.WithContext(ctx).Create(k).Error
}

func (r *functionKeyRepo) GetByID(ctx context.Context, id string) (*models.FunctionKey, error) {
	var k models.FunctionKey
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &k, err
}

func (r *functionKeyRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.FunctionKey{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
