package stt

import "context"

// Provider turns a spoken prompt into text. Audio is mono LINEAR16 unless the
// implementation is configured otherwise.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}

// CloudPhrases are product names recognizers tend to mangle.
var CloudPhrases = []string{
	"Azure", "Kubernetes", "AKS", "Cosmos DB", "Entra ID", "Synapse",
	"Databricks", "Data Factory", "Functions", "Logic Apps", "DevOps",
}
