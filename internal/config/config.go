package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	ClaudeModel string  `yaml:"claude_model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`

	InputPath  string `yaml:"input_path"`
	LedgerPath string `yaml:"ledger_path"`
	OutputDir  string `yaml:"output_dir"`
	DBPath     string `yaml:"db_path"`

	MaxItems      int `yaml:"max_items"`
	MaxConcurrent int `yaml:"max_concurrent"`

	RetryAttempts      int     `yaml:"retry_attempts"`
	RetryBaseDelayMS   int     `yaml:"retry_base_delay_ms"`
	RetryBackoffFactor float64 `yaml:"retry_backoff_factor"`

	PacingMS              int `yaml:"pacing_ms"`
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	InstructionsPath string `yaml:"instructions_path"`
	RunSchedule      string `yaml:"run_schedule"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`
}

// Load reads config.yaml (or CONFIG_PATH) if present, applies env var
// overrides, fills defaults and validates numeric env values. A missing
// config file is fine: everything can come from env vars and flags.
func Load() (Config, error) {
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	return LoadPath(configPath)
}

func LoadPath(configPath string) (Config, error) {
	var cfg Config

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.ClaudeModel, "CLAUDE_MODEL")
	if err := envOverrideFloat(&cfg.Temperature, "TEMPERATURE"); err != nil {
		return cfg, err
	}
	if err := envOverrideInt64(&cfg.MaxTokens, "MAX_TOKENS"); err != nil {
		return cfg, err
	}
	envOverride(&cfg.InputPath, "INPUT_PATH")
	envOverride(&cfg.LedgerPath, "LEDGER_PATH")
	envOverride(&cfg.OutputDir, "OUTPUT_DIR")
	envOverride(&cfg.DBPath, "DB_PATH")
	if err := envOverrideInt(&cfg.MaxItems, "MAX_ITEMS"); err != nil {
		return cfg, err
	}
	if err := envOverrideInt(&cfg.MaxConcurrent, "MAX_CONCURRENT"); err != nil {
		return cfg, err
	}
	if err := envOverrideInt(&cfg.RetryAttempts, "RETRY_ATTEMPTS"); err != nil {
		return cfg, err
	}
	if err := envOverrideInt(&cfg.RetryBaseDelayMS, "RETRY_BASE_DELAY_MS"); err != nil {
		return cfg, err
	}
	if err := envOverrideFloat(&cfg.RetryBackoffFactor, "RETRY_BACKOFF_FACTOR"); err != nil {
		return cfg, err
	}
	if err := envOverrideInt(&cfg.PacingMS, "PACING_MS"); err != nil {
		return cfg, err
	}
	if err := envOverrideInt(&cfg.RequestTimeoutSeconds, "REQUEST_TIMEOUT_SECONDS"); err != nil {
		return cfg, err
	}
	envOverride(&cfg.InstructionsPath, "INSTRUCTIONS_PATH")
	envOverride(&cfg.RunSchedule, "RUN_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")

	// Defaults
	if cfg.ClaudeModel == "" {
		cfg.ClaudeModel = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 50
	}
	if cfg.InputPath == "" {
		cfg.InputPath = "./data/items.json"
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = "./data/processed_ids.txt"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./data/results"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./portionbot.db"
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = 100
	}
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = 5
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBaseDelayMS == 0 {
		cfg.RetryBaseDelayMS = 1000
	}
	if cfg.RetryBackoffFactor == 0 {
		cfg.RetryBackoffFactor = 2.0
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = 90
	}

	return cfg, nil
}

// Validate checks the fields a run cannot start without. It runs after
// CLI flag overrides have been applied.
func (c Config) Validate() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("anthropic_api_key is required (config.yaml or ANTHROPIC_API_KEY)")
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("invalid max_concurrent %d: must be >= 1", c.MaxConcurrent)
	}
	if c.MaxItems < 1 {
		return fmt.Errorf("invalid max_items %d: must be >= 1", c.MaxItems)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("invalid temperature %f: must be between 0 and 1", c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("invalid max_tokens %d: must be >= 1", c.MaxTokens)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("invalid retry_attempts %d: must be >= 1", c.RetryAttempts)
	}
	if c.RetryBackoffFactor < 1 {
		return fmt.Errorf("invalid retry_backoff_factor %f: must be >= 1", c.RetryBackoffFactor)
	}
	if c.PacingMS < 0 {
		return fmt.Errorf("invalid pacing_ms %d: must be >= 0", c.PacingMS)
	}
	if c.SlackBotToken != "" && c.SlackChannelID == "" {
		return fmt.Errorf("slack_channel_id is required when slack_bot_token is set")
	}
	return nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideInt64(field *int64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
