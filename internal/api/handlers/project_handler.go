package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/services"
)

// NoPromptMessage is returned with 200 when the request carries no prompt.
const NoPromptMessage = "This HTTP triggered function executed successfully. Pass a name in the query string or in the request body for a personalized response."

type ProjectHandler struct {
	svc services.ProjectService
}

func NewProjectHandler(svc services.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

type ProjectRequest struct {
	Prompt string `json:"prompt"`
}

type ProjectResponse struct {
	Project string `json:"project"`
}

// readPrompt prefers the query string and falls back to a JSON body. A body
// that does not decode is treated as carrying no prompt.
func readPrompt(c *gin.Context) (prompt, source string) {
	if p := strings.TrimSpace(c.Query("prompt")); p != "" {
		return p, models.SourceQuery
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return "", ""
	}
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", ""
	}
	return strings.TrimSpace(req.Prompt), models.SourceBody
}

func (h *ProjectHandler) Generate(c *gin.Context) {
	prompt, source := readPrompt(c)
	if prompt == "" {
		c.String(http.StatusOK, NoPromptMessage)
		return
	}

	res, err := h.svc.Generate(c.Request.Context(), prompt, source)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("X-Generation-Id", res.GenerationID)
	if res.Cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, ProjectResponse{Project: res.Project})
}
