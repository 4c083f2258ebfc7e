package stt

import (
	"context"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

// GoogleSpeech transcribes short spoken prompts with synchronous recognition.
type GoogleSpeech struct {
	c *speech.Client

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32
	// Phrases bias recognition towards cloud product names.
	Phrases []string
}

func NewGoogleSpeech(ctx context.Context, phrases ...string) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:            c,
		Encoding:     speechpb.RecognitionConfig_LINEAR16,
		SampleRateHz: 16000,
		Phrases:      phrases,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

func (g *GoogleSpeech) recognitionConfig(language string) *speechpb.RecognitionConfig {
	if language == "" {
		language = "en-US"
	}
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   g.Encoding,
		SampleRateHertz:            g.SampleRateHz,
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
	}
	if len(g.Phrases) > 0 {
		cfg.SpeechContexts = []*speechpb.SpeechContext{{Phrases: g.Phrases}}
	}
	return cfg
}

// Transcribe joins the best alternative of every result, since a prompt may
// span several recognized segments.
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: g.recognitionConfig(language),
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", 0, err
	}
	text, conf := bestTranscript(resp.GetResults())
	return text, conf, nil
}

func bestTranscript(results []*speechpb.SpeechRecognitionResult) (string, float64) {
	var text string
	var confSum float64
	var n int
	for _, r := range results {
		alts := r.GetAlternatives()
		if len(alts) == 0 || alts[0].GetTranscript() == "" {
			continue
		}
		if text != "" {
			text += " "
		}
		text += alts[0].GetTranscript()
		confSum += float64(alts[0].GetConfidence())
		n++
	}
	if n == 0 {
		return "", 0
	}
	return text, confSum / float64(n)
}
