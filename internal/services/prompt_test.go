package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/providers/llm"
)

func TestBuildMessagesOrder(t *testing.T) {
	msgs := BuildMessages("event driven ideas", []models.CatalogMatch{
		{CertificationName: "AZ-204", ServiceName: "Azure Functions"},
		{CertificationName: "AZ-204", ServiceName: "  "},
		{CertificationName: "AZ-305", ServiceName: "Azure Event Grid"},
	})

	require.Len(t, msgs, 4)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: SystemPrompt}, msgs[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "event driven ideas"}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "Azure Functions"}, msgs[2])
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "Azure Event Grid"}, msgs[3])
}

func TestBuildMessagesWithoutMatches(t *testing.T) {
	msgs := BuildMessages("anything", nil)
	assert.Len(t, msgs, 2)
}

func TestSystemPromptMentionsAzure(t *testing.T) {
	assert.Contains(t, SystemPrompt, "Microsoft Azure")
	assert.Contains(t, SystemPrompt, "I don't know")
}
