package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/projectgen/internal/services"
)

type GenerationHandler struct {
	svc services.GenerationService
}

func NewGenerationHandler(svc services.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

func (h *GenerationHandler) Get(c *gin.Context) {
	g, err := h.svc.Get(c.Request.Context(), c.Param("generation_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GenerationHandler) List(c *gin.Context) {
	limit := queryLimit(c, 20, 100)

	rows, err := h.svc.ListRecent(c.Request.Context(), int64(limit))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generations": rows,
	})
}
