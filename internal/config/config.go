package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	HTTPAddr string `yaml:"http_addr"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	StoreBackend string `yaml:"store_backend"`
	DatabaseURL  string `yaml:"database_url"`

	AcquirerBackend string        `yaml:"acquirer_backend"`
	HeaderProfile   string        `yaml:"header_profile"`
	NavTimeout      time.Duration `yaml:"nav_timeout"`
	SettleDelay     time.Duration `yaml:"settle_delay"`

	LLMProvider     string        `yaml:"llm_provider"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	DefaultLLMModel string        `yaml:"default_llm_model"`
	AITimeout       time.Duration `yaml:"ai_timeout"`

	WorkerConcurrency int `yaml:"worker_concurrency"`
	TaskMaxRetries    int `yaml:"task_max_retries"`

	SupabaseURL        string `yaml:"supabase_url"`
	SupabaseServiceKey string `yaml:"supabase_service_key"`
	SupabaseBucket     string `yaml:"supabase_bucket"`
}

func defaults() Config {
	return Config{
		AppEnv:            "development",
		HTTPAddr:          ":8001",
		RedisAddr:         "127.0.0.1:6379",
		StoreBackend:      "redis",
		AcquirerBackend:   "playwright",
		HeaderProfile:     "windows",
		NavTimeout:        30 * time.Second,
		SettleDelay:       2 * time.Second,
		LLMProvider:       "gemini",
		DefaultLLMModel:   "gemini-2.0-flash",
		WorkerConcurrency: 10,
		SupabaseBucket:    "exports",
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getenvDuration accepts Go durations ("45s") or bare integers as seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if s, err := strconv.Atoi(v); err == nil {
		return time.Duration(s) * time.Second
	}
	return def
}

// Load reads .env (if present), overlays CONFIG_FILE (if set), then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using process environment")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := LoadFile(path, cfg)
		if err != nil {
			panic(fmt.Errorf("config file %s: %w", path, err))
		}
		cfg = fileCfg
	}
	cfg = applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// LoadFile decodes a YAML file on top of base. Keys absent from the file keep base values.
func LoadFile(path string, base Config) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, err
	}
	defer f.Close()

	cfg := base
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return base, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func applyEnv(c Config) Config {
	c.AppEnv = getenv("APP_ENV", c.AppEnv)
	c.HTTPAddr = getenv("HTTP_ADDR", c.HTTPAddr)
	c.RedisAddr = getenv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getenv("REDIS_PASSWORD", c.RedisPassword)
	c.StoreBackend = getenv("STORE_BACKEND", c.StoreBackend)
	c.DatabaseURL = getenv("DATABASE_URL", c.DatabaseURL)
	c.AcquirerBackend = getenv("ACQUIRER_BACKEND", c.AcquirerBackend)
	c.HeaderProfile = getenv("HEADER_PROFILE", c.HeaderProfile)
	c.NavTimeout = getenvDuration("NAV_TIMEOUT", c.NavTimeout)
	c.SettleDelay = getenvDuration("SETTLE_DELAY", c.SettleDelay)
	c.LLMProvider = getenv("LLM_PROVIDER", c.LLMProvider)
	c.GeminiAPIKey = getenv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.DefaultLLMModel = getenv("DEFAULT_LLM_MODEL", c.DefaultLLMModel)
	c.AITimeout = getenvDuration("AI_TIMEOUT", c.AITimeout)
	c.WorkerConcurrency = getenvInt("WORKER_CONCURRENCY", c.WorkerConcurrency)
	c.TaskMaxRetries = getenvInt("TASK_MAX_RETRIES", c.TaskMaxRetries)
	c.SupabaseURL = getenv("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseServiceKey = getenv("SUPABASE_SERVICE_ROLE_KEY", c.SupabaseServiceKey)
	c.SupabaseBucket = getenv("SUPABASE_STORAGE_BUCKET", c.SupabaseBucket)
	return c
}

func (c Config) Validate() error {
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	switch c.StoreBackend {
	case "redis", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.AcquirerBackend {
	case "playwright", "chromedp", "static":
	default:
		return fmt.Errorf("unknown ACQUIRER_BACKEND %q", c.AcquirerBackend)
	}
	switch c.HeaderProfile {
	case "windows", "macos":
	default:
		return fmt.Errorf("unknown HEADER_PROFILE %q", c.HeaderProfile)
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	return nil
}

// AIEnabled reports whether an AI credential is configured.
func (c Config) AIEnabled() bool { return c.GeminiAPIKey != "" }

// ArchiveEnabled reports whether exports should also be uploaded to object storage.
func (c Config) ArchiveEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != "" && c.SupabaseBucket != ""
}
