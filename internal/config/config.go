package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath      string `yaml:"db_path"`
	DataDir     string `yaml:"data_dir"`
	OutputDir   string `yaml:"output_dir"`
	ThreadsFile string `yaml:"threads_file"`

	AutoDraftSchedule string `yaml:"auto_draft_schedule"`

	LLMProvider               string `yaml:"llm_provider"`
	LLMModel                  string `yaml:"llm_model"`
	LLMBaseURL                string `yaml:"llm_base_url"`
	LLMValidateTimeoutSeconds int    `yaml:"llm_validate_timeout_seconds"`
	LLMGenerateTimeoutSeconds int    `yaml:"llm_generate_timeout_seconds"`

	SlackBotToken     string `yaml:"slack_bot_token"`
	ApprovalChannelID string `yaml:"approval_channel_id"`
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.DataDir, "DATA_DIR")
	envOverride(&cfg.OutputDir, "OUTPUT_DIR")
	envOverride(&cfg.ThreadsFile, "THREADS_FILE")
	envOverride(&cfg.AutoDraftSchedule, "AUTO_DRAFT_SCHEDULE")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.LLMBaseURL, "LLM_BASE_URL")
	envOverrideInt(&cfg.LLMValidateTimeoutSeconds, "LLM_VALIDATE_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.LLMGenerateTimeoutSeconds, "LLM_GENERATE_TIMEOUT_SECONDS")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ApprovalChannelID, "APPROVAL_CHANNEL_ID")

	if cfg.DBPath == "" {
		cfg.DBPath = "./casedesk.db"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}

	if cfg.LLMValidateTimeoutSeconds < 0 {
		log.Fatalf("invalid llm_validate_timeout_seconds '%d': must be >= 0", cfg.LLMValidateTimeoutSeconds)
	}
	if cfg.LLMGenerateTimeoutSeconds < 0 {
		log.Fatalf("invalid llm_generate_timeout_seconds '%d': must be >= 0", cfg.LLMGenerateTimeoutSeconds)
	}
	if cfg.SlackBotToken != "" && cfg.ApprovalChannelID == "" {
		log.Printf("WARNING: slack_bot_token is set but approval_channel_id is empty; approval notifications disabled")
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

// SlackConfigured reports whether approval notifications can be sent.
func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ApprovalChannelID != ""
}
