// Package gemini is a minimal client for the Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
)

const (
	// DefaultBaseURL is the public v1beta endpoint
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// maxErrorBody caps how much of an error body is kept
	maxErrorBody = 4096

	// replyTextPath locates the reply in a generateContent response
	replyTextPath = "candidates.0.content.parts.0.text"
)

// Client talks to the models and generateContent endpoints
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new Gemini REST client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listModelsResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		DisplayName                string   `json:"displayName"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	NextPageToken string `json:"nextPageToken"`
}

// ListModels returns the full catalog, following pagination
func (c *Client) ListModels(ctx context.Context) ([]domain.Model, error) {
	var models []domain.Model
	pageToken := ""

	for {
		q := url.Values{}
		q.Set("key", c.apiKey)
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		body, err := c.do(ctx, http.MethodGet, "ListModels", c.baseURL+"/models?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var page listModelsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode models: %w", err)
		}

		for _, m := range page.Models {
			models = append(models, domain.Model{
				Name:             m.Name,
				DisplayName:      m.DisplayName,
				SupportedMethods: m.SupportedGenerationMethods,
			})
		}

		if page.NextPageToken == "" || page.NextPageToken == pageToken {
			return models, nil
		}
		pageToken = page.NextPageToken
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

// Generate sends prompt to model and returns the first text part
func (c *Client) Generate(ctx context.Context, model domain.ModelID, prompt string) (string, error) {
	if model.IsZero() {
		return "", domain.ErrNoActiveModel
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?%s", c.baseURL, url.PathEscape(model.String()), q.Encode())

	body, err := c.do(ctx, http.MethodPost, "generateContent", endpoint, payload)
	if err != nil {
		return "", err
	}

	return ExtractReply(body)
}

// ExtractReply pulls the first candidate's first text part out of a
// generateContent response body.
func ExtractReply(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("invalid JSON: %w", domain.ErrMalformedResponse)
	}
	text := gjson.GetBytes(body, replyTextPath)
	if !text.Exists() || text.Type != gjson.String || text.Str == "" {
		return "", fmt.Errorf("%s missing: %w", replyTextPath, domain.ErrMalformedResponse)
	}
	return text.Str, nil
}

func (c *Client) do(ctx context.Context, method, name, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError(name, 0, redactKey(err.Error(), c.apiKey), "")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, domain.NewNetworkError(name, resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(errBody)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", name, err)
	}
	return body, nil
}

// redactKey keeps the API key out of transport errors, which embed the URL
func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, key, "REDACTED")
}
