package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/repo"
)

// SelectorConfig controls model selection
type SelectorConfig struct {
	FastMarker  string // Substring identifying fast-tier models
	PinnedModel string // Skips discovery when set
}

// SelectorUsecase picks the model used for every reply
type SelectorUsecase struct {
	catalog repo.ModelCatalog
	cfg     SelectorConfig
	log     zerolog.Logger
}

// NewSelectorUsecase creates a selector usecase
func NewSelectorUsecase(catalog repo.ModelCatalog, cfg SelectorConfig, log zerolog.Logger) *SelectorUsecase {
	return &SelectorUsecase{
		catalog: catalog,
		cfg:     cfg,
		log:     log.With().Str("component", "selector").Logger(),
	}
}

// Select queries the catalog once and applies the selection policy.
// It is meant to run once, before the relay starts.
func (uc *SelectorUsecase) Select(ctx context.Context) (domain.ModelID, error) {
	if uc.cfg.PinnedModel != "" {
		id := domain.NormalizeModelID(uc.cfg.PinnedModel)
		uc.log.Info().Str("model", id.String()).Msg("Using pinned Gemini model")
		return id, nil
	}

	models, err := uc.catalog.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("list models: %w", err)
	}

	id, err := domain.PickModel(models, uc.cfg.FastMarker)
	if err != nil {
		return "", err
	}

	uc.log.Info().
		Str("model", id.String()).
		Int("catalog_size", len(models)).
		Msg("Using Gemini model")
	return id, nil
}

// Candidates returns the content-capable models in catalog order
func (uc *SelectorUsecase) Candidates(ctx context.Context) ([]domain.Model, error) {
	models, err := uc.catalog.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return domain.ContentCapable(models), nil
}
