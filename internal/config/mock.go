package config

import (
	"fmt"
	"strings"
	"time"
)

type MockConfig struct {
	Env    string
	Server ServerConfig
	AI     AIConfig
}

type AIConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

// LoadMock загружает конфигурацию мок-сервера ML из окружения и .env.
func LoadMock() (MockConfig, error) {
	cfg := MockConfig{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	server, err := loadServer("MOCK_ML", 5000)
	if err != nil {
		return cfg, err
	}
	cfg.Server = server

	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 20*time.Second)
	if err != nil {
		return cfg, err
	}

	aiMaxOutputTokens, err := parseIntEnv("AI_MAX_OUTPUT_TOKENS", 512)
	if err != nil {
		return cfg, err
	}

	aiProvider := strings.ToLower(getEnv("AI_PROVIDER", ""))
	defaultBaseURL := "https://api.groq.com/openai/v1"
	defaultModel := "llama-3.1-8b-instant"
	if aiProvider == "gemini" {
		defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
		defaultModel = "gemini-1.5-flash"
	}

	aiAPIKey := getEnv("AI_API_KEY", "")
	if aiAPIKey == "" && aiProvider == "gemini" {
		aiAPIKey = getEnv("GEMINI_API_KEY", "")
	}

	cfg.AI = AIConfig{
		Provider:        aiProvider,
		APIKey:          aiAPIKey,
		BaseURL:         getEnv("AI_BASE_URL", defaultBaseURL),
		Model:           getEnv("AI_MODEL", defaultModel),
		Timeout:         aiTimeout,
		MaxOutputTokens: aiMaxOutputTokens,
	}

	if cfg.AI.Provider != "" && cfg.AI.Provider != "gemini" && cfg.AI.Provider != "groq" {
		return cfg, fmt.Errorf("AI_PROVIDER must be gemini or groq")
	}

	return cfg, nil
}

func loadServer(prefix string, defaultPort int) (ServerConfig, error) {
	port, err := parseIntEnv(prefix+"_PORT", defaultPort)
	if err != nil {
		return ServerConfig{}, err
	}

	readTimeout, err := parseDurationEnv(prefix+"_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	writeTimeout, err := parseDurationEnv(prefix+"_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	idleTimeout, err := parseDurationEnv(prefix+"_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		Host:         getEnv(prefix+"_HOST", "0.0.0.0"),
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}
