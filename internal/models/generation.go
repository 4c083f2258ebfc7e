package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SourceQuery = "query"
	SourceBody  = "body"
	SourceVoice = "voice"
	SourceWS    = "ws"
)

type Generation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	GenerationID string             `bson:"generation_id" json:"generation_id"` // uuid v4

	Prompt  string         `bson:"prompt" json:"prompt"`
	Source  string         `bson:"source" json:"source"` // query|body|voice|ws
	Matches []CatalogMatch `bson:"matches" json:"matches"`
	Project string         `bson:"project" json:"project"`
	Model   string         `bson:"model" json:"model"`

	LatencyMS int64     `bson:"latency_ms" json:"latency_ms"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"-"`
}
