package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/utils"
)

type fakeKeys struct {
	revoked []string
}

func (f *fakeKeys) Issue(_ context.Context, name string) (string, *models.FunctionKey, error) {
	return "kid.secret", &models.FunctionKey{ID: "kid", Name: name, CreatedAt: time.Unix(0, 0).UTC()}, nil
}

func (f *fakeKeys) Verify(context.Context, string) (*models.FunctionKey, error) { return nil, nil }

func (f *fakeKeys) Revoke(_ context.Context, id string) error {
	if id != "kid" {
		return utils.E(utils.CodeNotFound, "FunctionKeyService.Revoke", "key not found or already revoked", utils.ErrNotFound)
	}
	f.revoked = append(f.revoked, id)
	return nil
}

func TestKeyRoutes(t *testing.T) {
	keys := &fakeKeys{}
	h := NewKeyHandler(keys)
	r := gin.New()
	r.POST("/admin/keys", h.Issue)
	r.DELETE("/admin/keys/:key_id", h.Revoke)

	w := do(r, httptest.NewRequest(http.MethodPost, "/admin/keys", strings.NewReader(`{"name":"ci"}`)))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"kid.secret"`)
	assert.Contains(t, w.Body.String(), `"name":"ci"`)

	w = do(r, httptest.NewRequest(http.MethodPost, "/admin/keys", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, httptest.NewRequest(http.MethodDelete, "/admin/keys/kid", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"kid"}, keys.revoked)

	w = do(r, httptest.NewRequest(http.MethodDelete, "/admin/keys/other", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
