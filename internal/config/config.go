package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultUpstreamURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel       = "gpt-4o"
	DefaultMaxTokens   = 300

	// DefaultWorkerURL doubles as the "unconfigured" placeholder.
	DefaultWorkerURL = "https://YOUR_WORKER_SUBDOMAIN.workers.dev/"

	DefaultSystemPrompt = "You are L'Oréal Product Advisor. Only answer questions about L'Oréal products, " +
		"recommended routines, product usage, and product recommendations. If a user asks about topics " +
		"that are not related to L'Oréal products, routines, or recommendations, politely decline and say " +
		"you can only help with L'Oréal product-related questions. Keep answers helpful, concise, and professional."

	DefaultGreeting = "👋 Hello! I'm the L'Oréal Product Advisor. How can I help?"
)

type ProxyConfig struct {
	// Server
	Port string
	Env  string

	// Upstream
	// APIKey may be empty; the relay reports it per request.
	APIKey              string
	UpstreamURL         string
	Model               string
	MaxCompletionTokens int
	UpstreamTimeout     time.Duration
}

type WidgetConfig struct {
	// Endpoint sources, highest priority first
	WorkerURL string
	PagePath  string

	// Store is a file path or a redis:// URL
	Store string

	RequestTimeout time.Duration
	SystemPrompt   string
	Greeting       string
}

func LoadProxy() *ProxyConfig {
	// Load .env file if it exists
	godotenv.Load()

	return &ProxyConfig{
		Port:                getEnvOrDefault("PORT", "8080"),
		Env:                 getEnvOrDefault("ENV", "development"),
		APIKey:              os.Getenv("OPENAI_API_KEY"),
		UpstreamURL:         getEnvOrDefault("UPSTREAM_URL", DefaultUpstreamURL),
		Model:               getEnvOrDefault("UPSTREAM_MODEL", DefaultModel),
		MaxCompletionTokens: getEnvAsIntOrDefault("UPSTREAM_MAX_COMPLETION_TOKENS", DefaultMaxTokens),
		UpstreamTimeout:     getEnvAsDurationOrDefault("UPSTREAM_TIMEOUT", 60*time.Second),
	}
}

func LoadWidget() *WidgetConfig {
	godotenv.Load()

	return &WidgetConfig{
		WorkerURL:      os.Getenv("CHAT_WORKER_URL"),
		PagePath:       os.Getenv("CHAT_PAGE"),
		Store:          getEnvOrDefault("CHAT_STORE", defaultStorePath()),
		RequestTimeout: getEnvAsDurationOrDefault("CHAT_REQUEST_TIMEOUT", 90*time.Second),
		SystemPrompt:   getEnvOrDefault("CHAT_SYSTEM_PROMPT", DefaultSystemPrompt),
		Greeting:       getEnvOrDefault("CHAT_GREETING", DefaultGreeting),
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".chatrelay.json"
	}
	return filepath.Join(dir, "chatrelay", "storage.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}
