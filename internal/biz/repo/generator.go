package repo

import (
	"context"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
)

// Generator produces a reply for a single prompt
type Generator interface {
	// Generate returns the first candidate's first text part.
	// Returns domain.ErrMalformedResponse when the response has no such part,
	// and *domain.NetworkError for non-success statuses.
	Generate(ctx context.Context, model domain.ModelID, prompt string) (string, error)
}
