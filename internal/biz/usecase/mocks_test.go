package usecase

import (
	"context"
	"sync"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
)

// Mock implementations

type mockCatalog struct {
	models []domain.Model
	err    error
	calls  int
}

func (m *mockCatalog) ListModels(ctx context.Context) ([]domain.Model, error) {
	m.calls++
	return m.models, m.err
}

type generateCall struct {
	Model  domain.ModelID
	Prompt string
}

type mockGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []generateCall
}

func (m *mockGenerator) Generate(ctx context.Context, model domain.ModelID, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, generateCall{Model: model, Prompt: prompt})
	return m.text, m.err
}
