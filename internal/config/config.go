package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration. It is built once at startup and
// passed explicitly.
type Config struct {
	Server     ServerConfig
	STT        STTConfig
	Generation GenerationConfig
	TTS        TTSConfig
	Audio      AudioConfig
	Cache      CacheConfig
	RunLog     RunLogConfig
	Database   DatabaseConfig
	Redis      RedisConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host  string
	Port  int
	Debug bool
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	// UpstreamTimeout bounds every outbound call made by a pipeline stage.
	UpstreamTimeout time.Duration
}

// STTConfig selects and configures the transcription backend.
type STTConfig struct {
	Backend       string // "whisper" or "openai"
	WhisperURL    string
	Language      string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
}

// GenerationConfig selects and configures the reply backend.
type GenerationConfig struct {
	Backend       string // "webhook", "openai" or "anthropic"
	WebhookURL    string
	OpenAIKey     string
	OpenAIBaseURL string
	AnthropicKey  string
	Model         string
	SystemPrompt  string
	MaxTokens     int
}

// TTSConfig configures the Kokoro speech server.
type TTSConfig struct {
	KokoroURL string
	Model     string
	Voice     string
}

// AudioConfig is handed verbatim to the browser client; the server never reads it.
type AudioConfig struct {
	SilenceThreshold int `json:"SILENCE_THRESHOLD"`
	BargeInThreshold int `json:"BARGE_IN_THRESHOLD"`
	SilenceDuration  int `json:"SILENCE_DURATION"`
	SampleRate       int `json:"SAMPLE_RATE"`
}

// CacheConfig configures the optional synthesis cache.
type CacheConfig struct {
	Backend string // "", "memory" or "redis"
	Size    int
	TTL     time.Duration
}

// RunLogConfig selects where run records go.
type RunLogConfig struct {
	Backend string // "", "postgres" or "queue"
}

// DatabaseConfig configures the Postgres pool used by the run log.
type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

// RedisConfig is shared by the Redis cache and the asynq queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

const (
	defaultSystemPrompt = "You are a friendly voice assistant. Answer in one or two short spoken sentences."
)

// Load reads .env.local and .env (when present) and then the process
// environment. Values already set in the environment are never overridden.
func Load() (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	var errs []error
	intVar := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}
	durVar := func(key string, fallback time.Duration) time.Duration {
		v, err := getEnvDuration(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}

	genBackend := strings.ToLower(getEnv("GENERATION_BACKEND", "webhook"))

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv(envKey("SERVER_HOST", "FLASK_HOST"), "0.0.0.0"),
			Port:            intVar(envKey("SERVER_PORT", "FLASK_PORT"), 5001),
			Debug:           getEnvBool(envKey("DEBUG", "FLASK_DEBUG"), true),
			CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
			UpstreamTimeout: durVar("UPSTREAM_TIMEOUT", 120*time.Second),
		},
		STT: STTConfig{
			Backend:       strings.ToLower(getEnv("STT_BACKEND", "whisper")),
			WhisperURL:    strings.TrimRight(getEnv("WHISPER_URL", "http://localhost:5050"), "/"),
			Language:      getEnv("WHISPER_LANGUAGE", "en"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("STT_OPENAI_MODEL", "whisper-1"),
		},
		Generation: GenerationConfig{
			Backend:       genBackend,
			WebhookURL:    getEnv("N8N_WEBHOOK_URL", "http://localhost:5678/webhook/voice-agent"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:  getEnv("ANTHROPIC_API_KEY", ""),
			Model:         getEnv("GENERATION_MODEL", defaultGenerationModel(genBackend)),
			SystemPrompt:  getEnv("GENERATION_SYSTEM_PROMPT", defaultSystemPrompt),
			MaxTokens:     intVar("GENERATION_MAX_TOKENS", 512),
		},
		TTS: TTSConfig{
			KokoroURL: strings.TrimRight(getEnv("KOKORO_URL", "http://localhost:8880"), "/"),
			Model:     getEnv("KOKORO_MODEL", "kokoro"),
			Voice:     getEnv("KOKORO_VOICE", "af_heart"),
		},
		Audio: AudioConfig{
			SilenceThreshold: intVar("SILENCE_THRESHOLD", -40),
			BargeInThreshold: intVar("BARGE_IN_THRESHOLD", -30),
			SilenceDuration:  intVar("SILENCE_DURATION", 1000),
			SampleRate:       intVar("SAMPLE_RATE", 44100),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(getEnv("SYNTHESIS_CACHE", "")),
			Size:    intVar("SYNTHESIS_CACHE_SIZE", 256),
			TTL:     durVar("SYNTHESIS_CACHE_TTL", time.Hour),
		},
		RunLog: RunLogConfig{
			Backend: strings.ToLower(getEnv("RUNLOG_BACKEND", "")),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       intVar("DB_MAX_CONNS", 10),
			MinConns:       intVar("DB_MIN_CONNS", 1),
			MigrationsPath: getEnv("MIGRATIONS_PATH", ""), // empty: embedded migrations
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       intVar("REDIS_DB", 0),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks backend names and that every selected backend has what it needs.
func (c *Config) Validate() error {
	var problems []string

	switch c.STT.Backend {
	case "whisper":
	case "openai":
		if c.STT.OpenAIKey == "" && c.STT.OpenAIBaseURL == "" {
			problems = append(problems, "STT_BACKEND=openai requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STT_BACKEND %q", c.STT.Backend))
	}

	switch c.Generation.Backend {
	case "webhook":
		if c.Generation.WebhookURL == "" {
			problems = append(problems, "GENERATION_BACKEND=webhook requires N8N_WEBHOOK_URL")
		}
	case "openai":
		if c.Generation.OpenAIKey == "" && c.Generation.OpenAIBaseURL == "" {
			problems = append(problems, "GENERATION_BACKEND=openai requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
	case "anthropic":
		if c.Generation.AnthropicKey == "" {
			problems = append(problems, "GENERATION_BACKEND=anthropic requires ANTHROPIC_API_KEY")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown GENERATION_BACKEND %q", c.Generation.Backend))
	}

	switch c.Cache.Backend {
	case "", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			problems = append(problems, "SYNTHESIS_CACHE=redis requires REDIS_ADDR")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown SYNTHESIS_CACHE %q", c.Cache.Backend))
	}

	switch c.RunLog.Backend {
	case "":
	case "postgres":
		if c.Database.URL == "" {
			problems = append(problems, "RUNLOG_BACKEND=postgres requires DATABASE_URL")
		}
	case "queue":
		if c.Redis.Addr == "" {
			problems = append(problems, "RUNLOG_BACKEND=queue requires REDIS_ADDR")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown RUNLOG_BACKEND %q", c.RunLog.Backend))
	}

	if c.Server.UpstreamTimeout <= 0 {
		problems = append(problems, "UPSTREAM_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func defaultGenerationModel(backend string) string {
	switch backend {
	case "anthropic":
		return "claude-3-haiku-20240307"
	case "openai":
		return "gpt-4o-mini"
	}
	return ""
}

// envKey returns the first of keys that is set, or keys[0]. Later keys are
// legacy names kept so existing .env.local files still apply.
func envKey(keys ...string) string {
	for _, k := range keys {
		if os.Getenv(k) != "" {
			return k
		}
	}
	return keys[0]
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(strings.TrimSpace(v))
}

// getEnvBool treats only "true" (any case) as true, anything else set as false.
func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
