package repo

import (
	"context"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
)

// ModelCatalog lists the models available to the API key
type ModelCatalog interface {
	// ListModels returns every model in upstream order
	ListModels(ctx context.Context) ([]domain.Model, error)
}
