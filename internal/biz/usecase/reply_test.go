package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
)

func TestGenerate_NoActiveModel(t *testing.T) {
	gen := &mockGenerator{text: "unused"}
	uc := NewReplyUsecase(gen, "", "", zerolog.Nop())

	_, err := uc.Generate(context.Background(), "hello gemini")

	require.ErrorIs(t, err, domain.ErrNoActiveModel)
	assert.Empty(t, gen.calls, "no upstream call without a model")
}

func TestGenerate_ReturnsTextUnchanged(t *testing.T) {
	gen := &mockGenerator{text: "  It's sunny.\n"}
	uc := NewReplyUsecase(gen, "gemini-2.5-flash", "", zerolog.Nop())

	text, err := uc.Generate(context.Background(), "ask Gemini about the weather")

	require.NoError(t, err)
	assert.Equal(t, "  It's sunny.\n", text)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, domain.ModelID("gemini-2.5-flash"), gen.calls[0].Model)
	assert.Equal(t, "ask Gemini about the weather", gen.calls[0].Prompt)
}

func TestGenerate_MalformedDegradesToFallback(t *testing.T) {
	gen := &mockGenerator{err: fmt.Errorf("decode: %w", domain.ErrMalformedResponse)}
	uc := NewReplyUsecase(gen, "gemini-2.5-flash", "", zerolog.Nop())

	text, err := uc.Generate(context.Background(), "gemini?")

	require.NoError(t, err)
	assert.Equal(t, DefaultNoReplyText, text)
}

func TestGenerate_CustomFallback(t *testing.T) {
	gen := &mockGenerator{err: domain.ErrMalformedResponse}
	uc := NewReplyUsecase(gen, "gemini-2.5-flash", "nothing to say", zerolog.Nop())

	text, err := uc.Generate(context.Background(), "gemini?")

	require.NoError(t, err)
	assert.Equal(t, "nothing to say", text)
}

func TestGenerate_NetworkErrorPropagates(t *testing.T) {
	gen := &mockGenerator{err: domain.NewNetworkError("generateContent", 500, "Internal Server Error", "boom")}
	uc := NewReplyUsecase(gen, "gemini-2.5-flash", "", zerolog.Nop())

	text, err := uc.Generate(context.Background(), "gemini?")

	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.Empty(t, text)
}
