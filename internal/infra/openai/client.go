// Package openai generates replies through Gemini's OpenAI-compatible endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
)

// DefaultBaseURL is the OpenAI-compatible surface of the Gemini API
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// Client is a Gemini client using the OpenAI-compatible interface
type Client struct {
	client *openai.Client
}

// NewClient creates a new client. An empty baseURL uses DefaultBaseURL.
func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
	}
}

// Generate sends prompt as a single user message and returns the first choice
func (c *Client) Generate(ctx context.Context, model domain.ModelID, prompt string) (string, error) {
	if model.IsZero() {
		return "", domain.ErrNoActiveModel
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model.String(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no response choices: %w", domain.ErrMalformedResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewNetworkError("chat/completions", apiErr.HTTPStatusCode, http.StatusText(apiErr.HTTPStatusCode), apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return domain.NewNetworkError("chat/completions", reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode), body)
	}

	return fmt.Errorf("chat completion: %w", err)
}
