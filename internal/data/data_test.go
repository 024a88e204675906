package data

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/gemini"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/openai"
)

func TestNewRepositories_Backends(t *testing.T) {
	ctx := context.Background()

	repos, err := NewRepositories(ctx, Options{APIKey: "k"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := repos.Generator.(*gemini.Client); !ok {
		t.Errorf("Expected REST generator by default, got %T", repos.Generator)
	}
	if _, ok := repos.Catalog.(*gemini.Client); !ok {
		t.Errorf("Expected REST catalog, got %T", repos.Catalog)
	}

	repos, err = NewRepositories(ctx, Options{APIKey: "k", Backend: BackendOpenAI})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := repos.Generator.(*openai.Client); !ok {
		t.Errorf("Expected OpenAI-compatible generator, got %T", repos.Generator)
	}
	if _, ok := repos.Catalog.(*gemini.Client); !ok {
		t.Errorf("Expected REST catalog with openai backend, got %T", repos.Catalog)
	}

	if _, err := NewRepositories(ctx, Options{APIKey: "k", Backend: "carrier-pigeon"}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestNewRepositories_TimeoutReachesRESTClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	repos, err := NewRepositories(context.Background(), Options{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	start := time.Now()
	_, err = repos.Catalog.ListModels(context.Background())
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("Expected network error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("ListModels took %v, timeout not applied", elapsed)
	}
}

func TestBaseURLHelpers(t *testing.T) {
	if got := openAIBaseURL("https://example.com/v1beta/"); got != "https://example.com/v1beta/openai" {
		t.Errorf("openAIBaseURL = %q", got)
	}
	if got := openAIBaseURL(""); got != "" {
		t.Errorf("openAIBaseURL(\"\") = %q", got)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{gemini.DefaultBaseURL, ""},
		{"http://127.0.0.1:8080/v1beta", "http://127.0.0.1:8080/"},
		{"http://127.0.0.1:8080/v1/", "http://127.0.0.1:8080/"},
		{"http://proxy.local", "http://proxy.local/"},
	}
	for _, tt := range tests {
		if got := genaiBaseURL(tt.input); got != tt.want {
			t.Errorf("genaiBaseURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

type recordingSender struct {
	texts     []string
	presences []domain.Presence
}

func (s *recordingSender) SendText(ctx context.Context, chatID, text string) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSender) SendPresence(ctx context.Context, chatID string, presence domain.Presence) error {
	s.presences = append(s.presences, presence)
	return nil
}

func TestWhatsAppRepo_Binding(t *testing.T) {
	ctx := context.Background()
	r := NewWhatsAppRepo()

	if err := r.SendText(ctx, "chat", "hi"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}

	first := &recordingSender{}
	r.Bind(first)
	_ = r.SendPresence(ctx, "chat", domain.PresenceComposing)
	_ = r.SendText(ctx, "chat", "one")

	second := &recordingSender{}
	r.Bind(second)
	_ = r.SendText(ctx, "chat", "two")

	if len(first.texts) != 1 || first.texts[0] != "one" {
		t.Errorf("first sender got %v", first.texts)
	}
	if len(first.presences) != 1 || first.presences[0] != domain.PresenceComposing {
		t.Errorf("first sender presences %v", first.presences)
	}
	if len(second.texts) != 1 || second.texts[0] != "two" {
		t.Errorf("second sender got %v", second.texts)
	}

	r.Bind(nil)
	if err := r.SendPresence(ctx, "chat", domain.PresencePaused); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected after unbind, got %v", err)
	}
}
