package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/utils"
)

func TestVoiceGenerate(t *testing.T) {
	f := newProjectFixture(ProjectOptions{})
	speech := &fakeSTT{text: " build a chatbot "}
	svc := NewVoiceService(speech, f.svc)

	prompt, res, err := svc.Generate(context.Background(), []byte{1, 2, 3}, "id")
	require.NoError(t, err)
	assert.Equal(t, "build a chatbot", prompt)
	assert.Equal(t, "id-ID", speech.language)
	assert.NotEmpty(t, res.Project)
	assert.Equal(t, models.SourceVoice, f.gens.rows[0].Source)
}

func TestVoiceGenerateErrors(t *testing.T) {
	f := newProjectFixture(ProjectOptions{})

	_, _, err := NewVoiceService(&fakeSTT{text: "x"}, f.svc).Generate(context.Background(), nil, "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, _, err = NewVoiceService(&fakeSTT{text: "   "}, f.svc).Generate(context.Background(), []byte{1}, "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, _, err = NewVoiceService(&fakeSTT{err: errors.New("speech down")}, f.svc).Generate(context.Background(), []byte{1}, "")
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en-US", NormalizeLanguage(""))
	assert.Equal(t, "en-US", NormalizeLanguage("en"))
	assert.Equal(t, "id-ID", NormalizeLanguage(" id "))
	assert.Equal(t, "de-DE", NormalizeLanguage("de-DE"))
}
