package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/projectgen/internal/services"
	"github.com/yoockh/projectgen/internal/utils"
)

type KeyHandler struct {
	svc services.FunctionKeyService
}

func NewKeyHandler(svc services.FunctionKeyService) *KeyHandler {
	return &KeyHandler{svc: svc}
}

type IssueKeyRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *KeyHandler) Issue(c *gin.Context) {
	var req IssueKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "KeyHandler.Issue", "invalid request body", err))
		return
	}

	key, row, err := h.svc.Issue(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	// the plaintext key is only ever returned here
	c.JSON(http.StatusCreated, gin.H{
		"id":         row.ID,
		"name":       row.Name,
		"key":        key,
		"created_at": row.CreatedAt,
	})
}

func (h *KeyHandler) Revoke(c *gin.Context) {
	if err := h.svc.Revoke(c.Request.Context(), c.Param("key_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
