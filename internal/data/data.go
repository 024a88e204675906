package data

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/repo"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/gemini"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/genai"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/openai"
)

// Backend names
const (
	BackendREST   = "rest"
	BackendOpenAI = "openai"
	BackendGenAI  = "genai"
)

// Options configures repository construction
type Options struct {
	APIKey  string
	BaseURL string // Gemini REST base, e.g. .../v1beta
	Backend string // rest, openai or genai
	Timeout time.Duration
}

// Repositories contains all repositories
type Repositories struct {
	Catalog   repo.ModelCatalog
	Generator repo.Generator
	Message   *WhatsAppRepo
}

// NewRepositories creates all repositories. The model catalog always comes
// from the REST API (except for the genai backend, which lists through the SDK).
func NewRepositories(ctx context.Context, opts Options) (*Repositories, error) {
	httpClient := &http.Client{Timeout: opts.Timeout}
	restClient := gemini.NewClient(opts.APIKey, gemini.WithBaseURL(opts.BaseURL), gemini.WithHTTPClient(httpClient))

	repos := &Repositories{
		Catalog:   restClient,
		Generator: restClient,
		Message:   NewWhatsAppRepo(),
	}

	switch opts.Backend {
	case "", BackendREST:
	case BackendOpenAI:
		repos.Generator = openai.NewClient(opts.APIKey, openAIBaseURL(opts.BaseURL), httpClient)
	case BackendGenAI:
		client, err := genai.NewClient(ctx, opts.APIKey, genaiBaseURL(opts.BaseURL), httpClient)
		if err != nil {
			return nil, err
		}
		repos.Catalog = client
		repos.Generator = client
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}

	return repos, nil
}

func openAIBaseURL(restBase string) string {
	if restBase == "" {
		return ""
	}
	return strings.TrimRight(restBase, "/") + "/openai"
}

// genaiBaseURL strips the API version, which the SDK appends itself
func genaiBaseURL(restBase string) string {
	base := strings.TrimRight(restBase, "/")
	if base == "" || base == gemini.DefaultBaseURL {
		return ""
	}
	for _, v := range []string{"/v1beta", "/v1"} {
		if strings.HasSuffix(base, v) {
			return strings.TrimSuffix(base, v) + "/"
		}
	}
	return base + "/"
}
