package services

import (
	"context"
	"strings"

	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/providers/stt"
	"github.com/yoockh/projectgen/internal/utils"
)

type VoiceService interface {
	// Generate transcribes audio and runs the transcript through the project flow.
	Generate(ctx context.Context, audio []byte, language string) (prompt string, res *ProjectResult, err error)
}

type voiceService struct {
	stt      stt.Provider
	projects ProjectService
}

func NewVoiceService(provider stt.Provider, projects ProjectService) VoiceService {
	return &voiceService{stt: provider, projects: projects}
}

func NormalizeLanguage(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "", "en", "en-US":
		return "en-US"
	case "id", "id-ID":
		return "id-ID"
	default:
		return v
	}
}

func (s *voiceService) Generate(ctx context.Context, audio []byte, language string) (string, *ProjectResult, error) {
	const op = "VoiceService.Generate"

	if len(audio) == 0 {
		return "", nil, utils.E(utils.CodeInvalidArgument, op, "audio is required", nil)
	}

	text, _, err := s.stt.Transcribe(ctx, audio, NormalizeLanguage(language))
	if err != nil {
		return "", nil, utils.Upstream(op, "speech recognition failed", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil, utils.E(utils.CodeInvalidArgument, op, "no speech recognized in audio", nil)
	}

	res, err := s.projects.Generate(ctx, text, models.SourceVoice)
	if err != nil {
		return text, nil, err
	}
	return text, res, nil
}
