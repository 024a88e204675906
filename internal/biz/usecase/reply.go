package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/repo"
)

// DefaultNoReplyText is returned when the upstream answer has no text part
const DefaultNoReplyText = "No reply from Gemini (Error Code 01)"

// ReplyUsecase turns a prompt into reply text using the selected model
type ReplyUsecase struct {
	generator   repo.Generator
	model       domain.ModelID
	noReplyText string
	log         zerolog.Logger
}

// NewReplyUsecase creates a reply usecase bound to model
func NewReplyUsecase(generator repo.Generator, model domain.ModelID, noReplyText string, log zerolog.Logger) *ReplyUsecase {
	if noReplyText == "" {
		noReplyText = DefaultNoReplyText
	}
	return &ReplyUsecase{
		generator:   generator,
		model:       model,
		noReplyText: noReplyText,
		log:         log.With().Str("component", "reply").Logger(),
	}
}

// Model returns the model replies are generated with
func (uc *ReplyUsecase) Model() domain.ModelID {
	return uc.model
}

// Generate makes one generate call. A response without text degrades to the
// no-reply text; network failures are returned.
func (uc *ReplyUsecase) Generate(ctx context.Context, prompt string) (string, error) {
	if uc.model.IsZero() {
		return "", domain.ErrNoActiveModel
	}

	uc.log.Debug().Str("model", uc.model.String()).Msg("Sending request to Gemini API")
	start := time.Now()
	text, err := uc.generator.Generate(ctx, uc.model, prompt)
	uc.log.Info().
		Str("model", uc.model.String()).
		Dur("elapsed", time.Since(start)).
		Msg("Gemini API response time")

	if errors.Is(err, domain.ErrMalformedResponse) {
		uc.log.Warn().Err(err).Msg("Gemini response had no text")
		return uc.noReplyText, nil
	}
	if err != nil {
		return "", err
	}
	return text, nil
}
