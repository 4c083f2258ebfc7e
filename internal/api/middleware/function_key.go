package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/projectgen/config"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/utils"
)

const FunctionKeyHeader = "x-functions-key"

type KeyVerifier interface {
	Verify(ctx context.Context, key string) (*models.FunctionKey, error)
}

// FunctionKey guards routes with a function key, taken from the
// x-functions-key header or the code query parameter. With the anonymous
// auth level every request passes.
func FunctionKey(level string, keys KeyVerifier) gin.HandlerFunc {
	if strings.EqualFold(level, config.AuthLevelAnonymous) {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(FunctionKeyHeader))
		if key == "" {
			key = strings.TrimSpace(c.Query("code"))
		}
		if key == "" {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "missing function key")
			return
		}

		row, err := keys.Verify(c.Request.Context(), key)
		if err != nil {
			_ = c.Error(err)
			var ae *utils.AppError
			if errors.As(err, &ae) && ae.Code == utils.CodeUnauthorized {
				abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, ae.Message)
				return
			}
			abort(c, http.StatusInternalServerError, utils.CodeInternal, "failed to verify function key")
			return
		}

		c.Set("key_id", row.ID)
		c.Next()
	}
}
