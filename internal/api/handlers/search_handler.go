package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/projectgen/internal/services"
)

type SearchHandler struct {
	svc  services.SearchService
	topK int
}

func NewSearchHandler(svc services.SearchService, topK int) *SearchHandler {
	return &SearchHandler{svc: svc, topK: topK}
}

// Search exposes the retrieval step on its own: GET /api/search?q=&limit=
func (h *SearchHandler) Search(c *gin.Context) {
	k := queryLimit(c, h.topK, 50)

	matches, err := h.svc.VectorSearch(c.Request.Context(), c.Query("q"), k)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   c.Query("q"),
		"matches": matches,
	})
}
