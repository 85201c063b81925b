package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	// APIKey guards the chat, enhance and event endpoints when set.
	APIKey string `envconfig:"API_KEY"`
}

type AgentEnv struct {
	// AgentToken is the shared secret expected in X-Agent-Token. Empty
	// disables the check.
	AgentToken string `envconfig:"AGENT_TOKEN"`
}

type StoreEnv struct {
	Type       string `envconfig:"STORE_TYPE" default:"sqlite"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:".pomofocus/pomofocus.db"`
	BaseDir    string `envconfig:"STORAGE_BASE_DIR" default:".pomofocus/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket   string `envconfig:"S3_BUCKET"`
	S3Prefix   string `envconfig:"S3_PREFIX" default:"pomofocus/"`
	S3Region   string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	S3Endpoint string `envconfig:"S3_ENDPOINT"` // S3-compatible services such as MinIO
}

type OpenAIEnv struct {
	APIKey  string `envconfig:"OPENAI_API_KEY"`
	Model   string `envconfig:"OPENAI_MODEL" default:"gpt-3.5-turbo"`
	BaseURL string `envconfig:"OPENAI_BASE_URL"`
}

type ClientEnv struct {
	ServerURL    string `envconfig:"SERVER_URL" default:"http://localhost:3100"`
	IdentityFile string `envconfig:"IDENTITY_FILE"`
}

type Env struct {
	BaseEnv
	AgentEnv
	StoreEnv
	OpenAIEnv
	ClientEnv
}

const namespace = "POMOFOCUS"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

// IdentityPath returns where the client keeps the signed-in user,
// defaulting to <user config dir>/pomofocus/user.yaml.
func (e *ClientEnv) IdentityPath() (string, error) {
	if e.IdentityFile != "" {
		return e.IdentityFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "pomofocus", "user.yaml"), nil
}
