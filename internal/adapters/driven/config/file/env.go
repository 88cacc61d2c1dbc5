package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// Environment variables that override file settings.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvSlackToken    = "SLACK_TOKEN"
	EnvSlackAppToken = "SLACK_APP_TOKEN"
	EnvGitHubToken   = "GITHUB_TOKEN"
	EnvDataDir       = "THREADRAG_DATA_DIR"
)

// ApplyEnv overrides settings with any non-empty environment values.
func ApplyEnv(settings *domain.Settings, getenv func(string) string) {
	if key := getenv(EnvOpenAIKey); key != "" {
		settings.Embedding.APIKey = key
		settings.Completion.APIKey = key
	}
	if token := getenv(EnvSlackToken); token != "" {
		settings.Credentials.SlackToken = token
	}
	if token := getenv(EnvSlackAppToken); token != "" {
		settings.Credentials.SlackAppToken = token
	}
	if token := getenv(EnvGitHubToken); token != "" {
		settings.Credentials.GitHubToken = token
	}
	if dir := getenv(EnvDataDir); dir != "" {
		settings.DataDir = dir
	}
}

// loadDotEnv loads .env files from the config directory and the working
// directory. Variables already set in the environment are kept.
func loadDotEnv(configDir string) error {
	for _, path := range []string{filepath.Join(configDir, ".env"), ".env"} {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}
