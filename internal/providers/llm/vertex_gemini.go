package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

var ErrEmptyCompletion = errors.New("model returned no text")

type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Model() string { return v.modelName }

// model builds a fresh GenerativeModel per request because the system
// instruction lives on the model and differs between prompts.
func (v *VertexGemini) model(messages []Message) (*vertexgenai.GenerativeModel, []vertexgenai.Part) {
	system, user := splitMessages(messages)

	m := v.client.GenerativeModel(v.modelName)
	if system != "" {
		m.SystemInstruction = &vertexgenai.Content{
			Parts: []vertexgenai.Part{vertexgenai.Text(system)},
		}
	}

	parts := make([]vertexgenai.Part, 0, len(user))
	for _, u := range user {
		parts = append(parts, vertexgenai.Text(u))
	}
	return m, parts
}

func (v *VertexGemini) Complete(ctx context.Context, messages []Message) (string, error) {
	m, parts := v.model(messages)

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	text := firstCandidateText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (v *VertexGemini) StreamAnswer(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	m, parts := v.model(messages)

	go func() {
		defer close(out)
		defer close(errs)

		it := m.GenerateContentStream(ctx, parts...)
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}

			if t := firstCandidateText(resp); t != "" {
				select {
				case out <- t:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return out, errs
}

func firstCandidateText(resp *vertexgenai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(vertexgenai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

// splitMessages maps role-tagged messages onto Gemini's shape: every system
// message is folded into the system instruction (in order), everything else
// becomes user content.
func splitMessages(messages []Message) (system string, user []string) {
	var sys []string
	for _, msg := range messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if msg.Role == RoleSystem {
			sys = append(sys, strings.TrimSpace(msg.Content))
			continue
		}
		user = append(user, msg.Content)
	}
	return strings.Join(sys, "\n\n"), user
}
