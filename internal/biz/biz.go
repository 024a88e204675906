package biz

import (
	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Selector *usecase.SelectorUsecase
	Reply    *usecase.ReplyUsecase
	Filter   *usecase.KeywordFilter
}
