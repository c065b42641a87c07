package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingBotToken     = errors.New("BOT_TOKEN is required")
	ErrMissingProviderKind = errors.New("PROVIDER_KIND is required")
	ErrMissingProviderURL  = errors.New("PROVIDER_URL is required")
	ErrMissingDatabaseDSN  = errors.New("DB_DSN is required")
)

// Defaults from the original ZOZA bot: Arabic persona, gpt-4o-mini,
// 1.2s spacing, 8-turn window.
const (
	defaultSystemPrompt = "أنت ZOZA، مساعد ذكي محترف.\n" +
		"ترد باللغة العربية بشكل افتراضي.\n" +
		"أسلوبك واضح، مختصر، ومحترم.\n" +
		"اشرح التقني ببساطة، ولو مش متأكد قول بوضوح."
	defaultAliases         = "zoza,zoza bot,زوزا"
	defaultRateNotice      = "استنى ثانية كده 👀"
	defaultFallbackDown    = "حاليًا في مشكلة مؤقتة 🤖 جرّب كمان شوية."
	defaultFallbackUnclear = "مش فاهم قصدك أوي 🤔 وضّح سؤالك شوية."
	defaultProviderURL     = "https://api.openai.com/v1/chat/completions"
	defaultModel           = "gpt-4o-mini"
	defaultTemperature     = 0.4
	defaultMinDelay        = 1200 * time.Millisecond
	defaultHistoryCapacity = 8
)

type Config struct {
	BotToken   string
	DevPolling bool

	Chat     ChatConfig
	Provider ProviderConfig
	HTTP     HTTPConfig
	Webhook  WebhookConfig
	Redis    RedisConfig
	DB       DBConfig
	Crypto   CryptoConfig
	Log      LogConfig
}

type ChatConfig struct {
	SystemPrompt    string
	Aliases         []string
	MinRequestDelay time.Duration
	HistoryCapacity int
	RetainAssistant bool
	RateNotice      string
	FallbackDown    string
	FallbackUnclear string
}

type ProviderConfig struct {
	Kind        string
	URL         string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Headers     map[string]string
	Separator   string
}

type HTTPConfig struct {
	ClientTimeout time.Duration
	MaxRetries    int
	BackoffBase   time.Duration
}

type WebhookConfig struct {
	ListenAddr     string
	PublicURL      string
	SecretPath     string
	SecretToken    string
	HealthPath     string
	MetricsPath    string
	WebhookTimeout time.Duration
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	UpdateTTL time.Duration
}

type DBConfig struct {
	Driver         string
	DSN            string
	AutoMigrate    bool
	LogTranscripts bool
	TranscriptTTL  time.Duration
}

type CryptoConfig struct {
	CurrentKeyID string
	Keys         map[string][]byte
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		BotToken:   mustEnv("BOT_TOKEN", ""),
		DevPolling: mustBool("DEV_POLLING", false),
		Chat: ChatConfig{
			SystemPrompt:    mustEnv("SYSTEM_PROMPT", defaultSystemPrompt),
			Aliases:         splitList(mustEnv("BOT_ALIASES", defaultAliases)),
			MinRequestDelay: mustDuration("MIN_REQUEST_DELAY", defaultMinDelay),
			HistoryCapacity: mustInt("HISTORY_CAPACITY", defaultHistoryCapacity),
			RetainAssistant: mustBool("RETAIN_ASSISTANT_TURNS", false),
			RateNotice:      mustEnv("RATE_LIMIT_NOTICE", defaultRateNotice),
			FallbackDown:    mustEnv("FALLBACK_UNAVAILABLE", defaultFallbackDown),
			FallbackUnclear: mustEnv("FALLBACK_UNCLEAR", defaultFallbackUnclear),
		},
		Provider: ProviderConfig{
			Kind:        strings.ToLower(mustEnv("PROVIDER_KIND", "chat_completion")),
			URL:         mustEnv("PROVIDER_URL", defaultProviderURL),
			APIKey:      mustEnv("PROVIDER_API_KEY", ""),
			Model:       mustEnv("PROVIDER_MODEL", defaultModel),
			Temperature: mustFloat("PROVIDER_TEMPERATURE", defaultTemperature),
			MaxTokens:   mustInt("PROVIDER_MAX_TOKENS", 0),
			Separator:   mustEnv("HISTORY_JOIN_SEPARATOR", ""),
		},
		HTTP: HTTPConfig{
			ClientTimeout: mustDuration("HTTP_TIMEOUT", 30*time.Second),
			MaxRetries:    mustInt("HTTP_MAX_RETRIES", 0),
			BackoffBase:   mustDuration("HTTP_BACKOFF_BASE", 400*time.Millisecond),
		},
		Webhook: WebhookConfig{
			ListenAddr:     mustEnv("WEBHOOK_LISTEN_ADDR", ":8080"),
			PublicURL:      mustEnv("WEBHOOK_URL", ""),
			SecretPath:     strings.Trim(mustEnv("WEBHOOK_SECRET_PATH", "telegram"), "/"),
			SecretToken:    mustEnv("WEBHOOK_SECRET_TOKEN", ""),
			HealthPath:     mustEnv("HEALTH_PATH", "/healthz"),
			MetricsPath:    mustEnv("METRICS_PATH", "/metrics"),
			WebhookTimeout: mustDuration("WEBHOOK_TIMEOUT", 8*time.Second),
		},
		Redis: RedisConfig{
			Addr:      mustEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  mustEnv("REDIS_PASSWORD", ""),
			DB:        mustInt("REDIS_DB", 0),
			UpdateTTL: mustDuration("UPDATE_DEDUPE_TTL", 6*time.Hour),
		},
		DB: DBConfig{
			Driver:         strings.ToLower(mustEnv("DB_DRIVER", "sqlite")),
			DSN:            mustEnv("DB_DSN", "file:zozabot.db?_pragma=busy_timeout(5000)"),
			AutoMigrate:    mustBool("AUTO_MIGRATE", true),
			LogTranscripts: mustBool("LOG_TRANSCRIPTS", true),
			TranscriptTTL:  mustDuration("TRANSCRIPT_TTL", 0),
		},
		Log: LogConfig{
			Level: strings.ToLower(mustEnv("LOG_LEVEL", "info")),
		},
	}

	if cfg.BotToken == "" {
		return nil, ErrMissingBotToken
	}
	if cfg.Provider.Kind == "" {
		return nil, ErrMissingProviderKind
	}
	if cfg.Provider.URL == "" {
		return nil, ErrMissingProviderURL
	}
	if cfg.DB.LogTranscripts && cfg.DB.DSN == "" {
		return nil, ErrMissingDatabaseDSN
	}

	headers, err := loadHeaders()
	if err != nil {
		return nil, err
	}
	cfg.Provider.Headers = headers

	cc, err := loadCryptoConfig()
	if err != nil {
		return nil, err
	}
	cfg.Crypto = cc

	return cfg, nil
}

// loadHeaders reads PROVIDER_HEADERS_JSON, used by backends that want
// attribution headers (referer/title pairs) next to the bearer token.
func loadHeaders() (map[string]string, error) {
	raw := mustEnv("PROVIDER_HEADERS_JSON", "")
	if raw == "" {
		return nil, nil
	}
	headers := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return nil, fmt.Errorf("parse PROVIDER_HEADERS_JSON: %w", err)
	}
	return headers, nil
}

// loadCryptoConfig assembles the optional transcript encryption keyring.
// With no keys configured, transcripts are stored in plaintext.
func loadCryptoConfig() (CryptoConfig, error) {
	keysB64 := map[string]string{}

	if raw := mustEnv("MASTER_KEYS_JSON", ""); raw != "" {
		var parsed map[string]string
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return CryptoConfig{}, fmt.Errorf("parse MASTER_KEYS_JSON: %w", err)
		}
		for id, val := range parsed {
			if strings.TrimSpace(id) == "" || strings.TrimSpace(val) == "" {
				continue
			}
			keysB64[id] = val
		}
	}

	current := mustEnv("MASTER_KEY_CURRENT_ID", "")
	if singleton := mustEnv("MASTER_KEY_B64", ""); singleton != "" {
		if current == "" {
			current = "default"
		}
		keysB64[current] = singleton
	}

	if len(keysB64) == 0 {
		return CryptoConfig{}, nil
	}

	keys := make(map[string][]byte, len(keysB64))
	for id, b64 := range keysB64 {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return CryptoConfig{}, fmt.Errorf("decode master key %q: %w", id, err)
		}
		if len(raw) != 32 {
			return CryptoConfig{}, fmt.Errorf("master key %q must be 32 bytes after base64 decode", id)
		}
		keys[id] = raw
	}

	if current == "" {
		for id := range keys {
			current = id
			break
		}
	}
	if _, ok := keys[current]; !ok {
		return CryptoConfig{}, fmt.Errorf("MASTER_KEY_CURRENT_ID=%q does not exist in provided keys", current)
	}

	return CryptoConfig{CurrentKeyID: current, Keys: keys}, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func mustEnv(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func mustInt(key string, def int) int {
	v := mustEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func mustFloat(key string, def float64) float64 {
	v := mustEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func mustBool(key string, def bool) bool {
	v := mustEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func mustDuration(key string, def time.Duration) time.Duration {
	v := mustEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
