package commands

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
	"models": [
		{"name": "models/gemini-2.5-pro", "displayName": "Gemini 2.5 Pro", "supportedGenerationMethods": ["generateContent"]},
		{"name": "models/gemini-2.5-flash", "displayName": "Gemini 2.5 Flash", "supportedGenerationMethods": ["generateContent", "countTokens"]},
		{"name": "models/text-embedding-004", "displayName": "Embedding", "supportedGenerationMethods": ["embedContent"]}
	]
}`

// setEnv isolates the test from the caller's environment
func setEnv(t *testing.T, baseURL string) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_BACKEND", "GEMINI_MODEL", "GEMINI_FAST_MARKER", "GEMINI_TIMEOUT_SECONDS",
		"TRIGGER_KEYWORD", "AUTH_DIR", "REPLIES_CONFIG_PATH", "LOG_LEVEL", "DEBUG",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_BASE_URL", baseURL)
}

func geminiServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/models":
			_, _ = io.WriteString(w, catalogJSON)
		case r.Method == http.MethodPost && r.URL.Path == "/models/gemini-2.5-flash:generateContent":
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"`+reply+`"}]}}]}`)
		default:
			http.Error(w, "unexpected "+r.URL.Path, http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Metadata(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "wa-gemini-bridge", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"auth-dir", "backend", "model", "log-level", "replies"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag %s", name)
	}
	assert.NotNil(t, cmd.Flags().Lookup("keyword"))

	var subs []string
	for _, c := range cmd.Commands() {
		subs = append(subs, c.Name())
	}
	assert.ElementsMatch(t, []string{"models", "ask"}, subs)
}

func TestRootCommand_MissingAPIKey(t *testing.T) {
	setEnv(t, "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := run(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	setEnv(t, "")

	_, err := run(t, "unexpected")
	assert.Error(t, err)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	setEnv(t, "http://localhost")
	t.Setenv("TRIGGER_KEYWORD", "gemini")

	cfg, err := loadConfig(&flagValues{
		authDir:  "/tmp/wa",
		keyword:  "bot",
		backend:  "genai",
		model:    "models/gemini-pro",
		logLevel: "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/wa", cfg.WhatsApp.AuthDir)
	assert.Equal(t, "bot", cfg.Keyword())
	assert.Equal(t, "genai", cfg.Gemini.Backend)
	assert.Equal(t, "models/gemini-pro", cfg.Gemini.Model)
	assert.Equal(t, "warn", cfg.LogLevel)
	require.NotNil(t, cfg.Replies)
	assert.NotEmpty(t, cfg.Replies.Replies.Error)
}

func TestLoadConfig_InvalidBackend(t *testing.T) {
	setEnv(t, "http://localhost")

	_, err := loadConfig(&flagValues{backend: "grpc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_BACKEND")
}

func TestModelsCommand(t *testing.T) {
	srv := geminiServer(t, "unused")
	setEnv(t, srv.URL)

	out, err := run(t, "models")
	require.NoError(t, err)

	assert.Contains(t, out, "Gemini models (2)")
	assert.Contains(t, out, "gemini-2.5-pro")
	assert.NotContains(t, out, "text-embedding-004")

	line, marked := markedLine(out, "gemini-2.5-flash")
	assert.True(t, marked, "picked model should be marked: %q", line)
	line, marked = markedLine(out, "gemini-2.5-pro")
	assert.False(t, marked, "only the pick is marked: %q", line)
}

// markedLine returns the output line holding name and whether it carries the pick marker
func markedLine(out, name string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, name); i >= 0 {
			marker := strings.Index(line, "*")
			return line, marker >= 0 && marker < i
		}
	}
	return "", false
}

func TestModelsCommand_MarksPinnedModel(t *testing.T) {
	srv := geminiServer(t, "unused")
	setEnv(t, srv.URL)

	out, err := run(t, "models", "--model", "models/gemini-2.5-pro")
	require.NoError(t, err)

	line, marked := markedLine(out, "gemini-2.5-pro")
	assert.True(t, marked, "pinned model should be marked: %q", line)
	line, marked = markedLine(out, "gemini-2.5-flash")
	assert.False(t, marked, "fast model is not used when a model is pinned: %q", line)
}

func TestAskCommand(t *testing.T) {
	srv := geminiServer(t, "Hello there")
	setEnv(t, srv.URL)

	out, err := run(t, "ask", "say", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there\n", out)
}

func TestAskCommand_PinnedModelSkipsCatalog(t *testing.T) {
	var listed atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			listed.Store(true)
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		assert.Equal(t, "/models/gemini-pro:generateContent", r.URL.Path)
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"pinned"}]}}]}`)
	}))
	defer srv.Close()
	setEnv(t, srv.URL)

	out, err := run(t, "ask", "--model", "models/gemini-pro", "hi")
	require.NoError(t, err)
	assert.Equal(t, "pinned\n", out)
	assert.False(t, listed.Load())
}

func TestAskCommand_NoUsableModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"models":[]}`)
	}))
	defer srv.Close()
	setEnv(t, srv.URL)

	_, err := run(t, "ask", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select model")
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
	assert.Equal(t, defaultWrapWidth, terminalWidth(&bytes.Buffer{}))
}
