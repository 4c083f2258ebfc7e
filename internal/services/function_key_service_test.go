package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/projectgen/internal/utils"
)

func TestIssueAndVerifyKey(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewFunctionKeyService(repo)
	ctx := context.Background()

	key, row, err := svc.Issue(ctx, " frontend ")
	require.NoError(t, err)
	assert.Equal(t, "frontend", row.Name)
	assert.True(t, strings.HasPrefix(key, row.ID+"."))
	assert.NotContains(t, repo.rows[row.ID].SecretHash, strings.TrimPrefix(key, row.ID+"."))

	got, err := svc.Verify(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, row.ID, got.ID)
}

func TestVerifyRejectsBadKeys(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewFunctionKeyService(repo)
	ctx := context.Background()

	key, row, err := svc.Issue(ctx, "cli")
	require.NoError(t, err)

	for _, bad := range []string{"", "nodot", row.ID + ".wrong", "unknown." + strings.Repeat("a", 10), "." + key} {
		_, err := svc.Verify(ctx, bad)
		assert.True(t, utils.IsCode(err, utils.CodeUnauthorized), bad)
	}

	require.NoError(t, svc.Revoke(ctx, row.ID))
	_, err = svc.Verify(ctx, key)
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))

	err = svc.Revoke(ctx, row.ID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestIssueRequiresName(t *testing.T) {
	_, _, err := NewFunctionKeyService(newFakeKeyRepo()).Issue(context.Background(), "  ")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
