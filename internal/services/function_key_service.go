package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/projectgen/internal/models"
	pgrepo "github.com/yoockh/projectgen/internal/repositories/postgres"
	"github.com/yoockh/projectgen/internal/utils"
)

type FunctionKeyService interface {
	// Issue returns the plaintext key once; only its hash is stored.
	Issue(ctx context.Context, name string) (key string, row *models.FunctionKey, err error)
	Verify(ctx context.Context, key string) (*models.FunctionKey, error)
	Revoke(ctx context.Context, id string) error
}

type functionKeyService struct {
	keys pgrepo.FunctionKeyRepository
}

func NewFunctionKeyService(keys pgrepo.FunctionKeyRepository) FunctionKeyService {
	return &functionKeyService{keys: keys}
}

func (s *functionKeyService) Issue(ctx context.Context, name string) (string, *models.FunctionKey, error) {
	const op = "FunctionKeyService.Issue"

	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, utils.E(utils.CodeInvalidArgument, op, "name is required", nil)
	}

	id, err := utils.GenerateSecret(9)
	if err != nil {
		return "", nil, utils.E(utils.CodeInternal, op, "failed to generate key id", err)
	}
	secret, err := utils.GenerateSecret(32)
	if err != nil {
		return "", nil, utils.E(utils.CodeInternal, op, "failed to generate key secret", err)
	}
	hash, err := utils.HashSecret(secret)
	if err != nil {
		return "", nil, utils.E(utils.CodeInternal, op, "failed to hash key secret", err)
	}

	row := &models.FunctionKey{
		ID:         id,
		Name:       name,
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.keys.Insert(ctx, row); err != nil {
		return "", nil, utils.E(utils.CodeInternal, op, "failed to store key", err)
	}
	return id + "." + secret, row, nil
}

func (s *functionKeyService) Verify(ctx context.Context, key string) (*models.FunctionKey, error) {
	const op = "FunctionKeyService.Verify"

	id, secret, ok := utils.SplitKey(key)
	if !ok {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid function key", nil)
	}

	row, err := s.keys.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid function key", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load key", err)
	}
	if row.RevokedAt != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "function key revoked", nil)
	}
	if err := utils.CheckSecret(row.SecretHash, secret); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid function key", err)
	}
	return row, nil
}

func (s *functionKeyService) Revoke(ctx context.Context, id string) error {
	const op = "FunctionKeyService.Revoke"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}
	if err := s.keys.Revoke(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "key not found or already revoked", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to revoke key", err)
	}
	return nil
}
