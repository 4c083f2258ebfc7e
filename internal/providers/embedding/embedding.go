package embedding

import "context"

// Task tells the embedding model which side of a retrieval pair it is
// encoding. Queries and indexed documents use different task types.
type Task string

const (
	TaskQuery    Task = "RETRIEVAL_QUERY"
	TaskDocument Task = "RETRIEVAL_DOCUMENT"
)

type Provider interface {
	Embed(ctx context.Context, text string, task Task) ([]float32, error)
	Model() string
}
