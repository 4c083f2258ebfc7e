package services

import (
	"strings"

	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/providers/llm"
)

const SystemPrompt = `You are an experienced cloud engineer who provides advice to people trying to get hands-on skills while studying for their cloud certifications. You are designed to provide helpful project ideas with a short description, list of possible services to use, and skills that need to be practiced.
- Only provide project ideas that have products that are part of Microsoft Azure.
- Each response should be a project idea with a short description, list of possible services to use, and skills that need to be practiced.
- Write two lines of whitespace between each answer in the list.
- If you're unsure of an answer, you can say "I don't know" or "I'm not sure" and recommend users search themselves.`

// BuildMessages lays out the chat request: the system prompt, the user's
// prompt, then one system message per retrieved service name.
func BuildMessages(prompt string, matches []models.CatalogMatch) []llm.Message {
	msgs := make([]llm.Message, 0, len(matches)+2)
	msgs = append(msgs,
		llm.Message{Role: llm.RoleSystem, Content: SystemPrompt},
		llm.Message{Role: llm.RoleUser, Content: prompt},
	)
	for _, m := range matches {
		name := strings.TrimSpace(m.ServiceName)
		if name == "" {
			continue
		}
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: name})
	}
	return msgs
}
