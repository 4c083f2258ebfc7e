package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/projectgen/internal/services"
	"github.com/yoockh/projectgen/internal/utils"
)

const maxAudioBytes = 10 << 20

type VoiceHandler struct {
	svc services.VoiceService
}

func NewVoiceHandler(svc services.VoiceService) *VoiceHandler {
	return &VoiceHandler{svc: svc}
}

func (h *VoiceHandler) Generate(c *gin.Context) {
	const op = "VoiceHandler.Generate"

	fh, err := c.FormFile("audio")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'audio'", err))
		return
	}
	if fh.Size <= 0 || fh.Size > maxAudioBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio must be between 1 byte and 10MB", nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer f.Close()

	audio, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}

	prompt, res, err := h.svc.Generate(c.Request.Context(), audio, c.PostForm("language"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("X-Generation-Id", res.GenerationID)
	c.JSON(http.StatusOK, gin.H{
		"prompt":  prompt,
		"project": res.Project,
	})
}
