// Package genai adapts the Google Gen AI SDK to the bridge's catalog and
// generator interfaces.
package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
)

// Client wraps a genai.Client using the Gemini API backend
type Client struct {
	client *genai.Client
}

// NewClient creates a client for apiKey. An empty baseURL keeps the SDK default.
func NewClient(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Client{client: client}, nil
}

// ListModels returns every model the key can see
func (c *Client) ListModels(ctx context.Context) ([]domain.Model, error) {
	var models []domain.Model
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, mapError("ListModels", err)
		}
		models = append(models, domain.Model{
			Name:             m.Name,
			DisplayName:      m.DisplayName,
			SupportedMethods: m.SupportedActions,
		})
	}
	return models, nil
}

// Generate sends prompt to model and returns the first text part
func (c *Client) Generate(ctx context.Context, model domain.ModelID, prompt string) (string, error) {
	if model.IsZero() {
		return "", domain.ErrNoActiveModel
	}

	resp, err := c.client.Models.GenerateContent(ctx, model.String(), genai.Text(prompt), nil)
	if err != nil {
		return "", mapError("generateContent", err)
	}
	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates: %w", domain.ErrMalformedResponse)
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
		return "", fmt.Errorf("no content parts: %w", domain.ErrMalformedResponse)
	}
	if cand.Content.Parts[0].Text == "" {
		return "", fmt.Errorf("empty text part: %w", domain.ErrMalformedResponse)
	}
	return cand.Content.Parts[0].Text, nil
}

func mapError(endpoint string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewNetworkError(endpoint, apiErr.Code, apiErr.Status, apiErr.Message)
	}
	return fmt.Errorf("%s: %w", endpoint, err)
}
