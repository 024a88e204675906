package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RepliesConfig contains the fixed texts and trigger loaded from YAML
type RepliesConfig struct {
	Trigger TriggerConfig `yaml:"trigger"`
	Replies ReplyTexts    `yaml:"replies"`
}

// TriggerConfig configures which messages are relayed
type TriggerConfig struct {
	Keyword string `yaml:"keyword"`
}

// ReplyTexts are the fallback messages sent to users
type ReplyTexts struct {
	NoReply string `yaml:"no_reply"` // Upstream answered without text
	Error   string `yaml:"error"`    // Generation or sending failed
}

// DefaultRepliesConfig returns the built-in texts
func DefaultRepliesConfig() *RepliesConfig {
	return &RepliesConfig{
		Trigger: TriggerConfig{Keyword: "gemini"},
		Replies: ReplyTexts{
			NoReply: "No reply from Gemini (Error Code 01)",
			Error:   "Something went wrong (Error code 02)",
		},
	}
}

// LoadRepliesConfig loads the replies file. With an empty configPath the
// usual locations are searched and a missing file yields the defaults; an
// explicit path must exist. Returns the path actually loaded, "" for defaults.
func LoadRepliesConfig(configPath string) (*RepliesConfig, string, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/replies.yaml",
			"/etc/wa-gemini-bridge/replies.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "replies.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data, loadedPath = b, p
			break
		}
		if configPath != "" {
			return nil, "", fmt.Errorf("failed to read %s: %w", configPath, err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("failed to read %s: %w", p, err)
		}
	}

	if data == nil {
		return DefaultRepliesConfig(), "", nil
	}

	var config RepliesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}

	// Fill in defaults for empty values
	config.fillDefaults()

	return &config, loadedPath, nil
}

// fillDefaults fills in default values for empty fields
func (c *RepliesConfig) fillDefaults() {
	defaults := DefaultRepliesConfig()

	if c.Trigger.Keyword == "" {
		c.Trigger.Keyword = defaults.Trigger.Keyword
	}
	if c.Replies.NoReply == "" {
		c.Replies.NoReply = defaults.Replies.NoReply
	}
	if c.Replies.Error == "" {
		c.Replies.Error = defaults.Replies.Error
	}
}
