package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every runtime setting for the relay.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Chat     ChatConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	upstream, err := loadUpstreamConfig(server)
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Upstream: upstream, Chat: chat}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8787"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8787" or "127.0.0.1:8787" directly.
		return ServerConfig{Addr: port}, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// UpstreamConfig describes the OpenRouter completion endpoint.
type UpstreamConfig struct {
	APIKey   string
	Model    string
	BaseURL  string
	Referrer string
	Title    string
	Timeout  time.Duration
}

// Configured reports whether a credential is present. Without one every chat
// call takes the error path and clients fall back to local generation.
func (c UpstreamConfig) Configured() bool {
	return c.APIKey != ""
}

func loadUpstreamConfig(server ServerConfig) (UpstreamConfig, error) {
	timeoutSeconds := 8
	if override, err := parseOptionalIntEnv("UPSTREAM_TIMEOUT"); err != nil {
		return UpstreamConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return UpstreamConfig{}, fmt.Errorf("UPSTREAM_TIMEOUT must be at least 1 second")
		}
		timeoutSeconds = *override
	}

	referrer := strings.TrimSpace(os.Getenv("OPENROUTER_REFERRER"))
	if referrer == "" {
		referrer = "http://localhost" + server.Addr
	}

	return UpstreamConfig{
		APIKey:   strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		Model:    getEnvOrDefault("OPENROUTER_MODEL", "z-ai/glm-4.5-air:free"),
		BaseURL:  getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		Referrer: referrer,
		Title:    getEnvOrDefault("OPENROUTER_TITLE", "Chatbot App"),
		Timeout:  time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// ChatConfig describes conversation policy.
type ChatConfig struct {
	HistoryLimit int
	SystemPrompt string
}

func loadChatConfig() (ChatConfig, error) {
	limit := 20
	if override, err := parseOptionalIntEnv("CHAT_HISTORY_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 2 {
			return ChatConfig{}, fmt.Errorf("CHAT_HISTORY_LIMIT must keep at least one user/assistant pair")
		}
		limit = *override
	}

	return ChatConfig{
		HistoryLimit: limit,
		SystemPrompt: getEnvOrDefault("CHAT_SYSTEM_PROMPT",
			"You are a helpful, friendly, and concise AI assistant. Provide clear and useful responses."),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
