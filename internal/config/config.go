package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	Session SessionConfig
	Redis   RedisConfig
	LLM     LLMConfig
	Media   MediaConfig
	Cache   CacheConfig
	Client  ClientConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimitMB  int
	AllowOrigins string
}

type LoggerConfig struct {
	Level string
	Env   string
}

type SessionConfig struct {
	Store string // memory | redis
	TTL   time.Duration
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LLMConfig struct {
	Provider    string // openai | ollama | mock
	ServerURL   string
	Model       string
	APIKey      string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

type MediaConfig struct {
	Transcriber     string // google | none
	Captioner       string // google | none
	LanguageCode    string
	CredentialsFile string
	MaxLabels       int
}

type CacheConfig struct {
	Enabled   bool
	BundleTTL time.Duration
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 60)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.body_limit_mb", 50)
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", "0s")
	v.SetDefault("redis.db", 0)
	v.SetDefault("llm.provider", "mock")
	v.SetDefault("llm.server_url", "http://localhost:11434")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.timeout", 60)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("media.transcriber", "none")
	v.SetDefault("media.captioner", "none")
	v.SetDefault("media.language_code", "en-US")
	v.SetDefault("media.max_labels", 10)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.bundle_ttl", "24h")
	v.SetDefault("client.base_url", "http://localhost:8000")
	v.SetDefault("client.timeout", 10)
}

// LoadConfig reads config.yaml (optional), a .env file (optional) and the
// environment, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", absPath)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
			IdleTimeout:  time.Duration(v.GetInt("server.idle_timeout")) * time.Second,
			BodyLimitMB:  v.GetInt("server.body_limit_mb"),
			AllowOrigins: v.GetString("server.allow_origins"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Session: SessionConfig{
			Store: strings.ToLower(v.GetString("session.store")),
			TTL:   v.GetDuration("session.ttl"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			ServerURL:   v.GetString("llm.server_url"),
			Model:       v.GetString("llm.model"),
			APIKey:      v.GetString("llm.api_key"),
			Timeout:     time.Duration(v.GetInt("llm.timeout")) * time.Second,
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
		},
		Media: MediaConfig{
			Transcriber:     strings.ToLower(v.GetString("media.transcriber")),
			Captioner:       strings.ToLower(v.GetString("media.captioner")),
			LanguageCode:    v.GetString("media.language_code"),
			CredentialsFile: v.GetString("media.credentials_file"),
			MaxLabels:       v.GetInt("media.max_labels"),
		},
		Cache: CacheConfig{
			Enabled:   v.GetBool("cache.enabled"),
			BundleTTL: v.GetDuration("cache.bundle_ttl"),
		},
		Client: ClientConfig{
			BaseURL: v.GetString("client.base_url"),
			Timeout: time.Duration(v.GetInt("client.timeout")) * time.Second,
		},
	}

	// Well-known variable names win over the nested keys.
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if openAIKey := os.Getenv("OPENAI_API_KEY"); openAIKey != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = openAIKey
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		cfg.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" && cfg.Media.CredentialsFile == "" {
		cfg.Media.CredentialsFile = creds
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Redis.Address == "" {
			return fmt.Errorf("session.store is redis but redis.address is empty")
		}
	default:
		return fmt.Errorf("unsupported session.store %q", c.Session.Store)
	}
	switch c.LLM.Provider {
	case "mock", "ollama":
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.provider is openai but no API key is configured (llm.api_key or OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("unsupported llm.provider %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	for name, v := range map[string]string{"media.transcriber": c.Media.Transcriber, "media.captioner": c.Media.Captioner} {
		if v != "google" && v != "none" {
			return fmt.Errorf("unsupported %s %q", name, v)
		}
	}
	if c.Session.TTL < 0 || c.Cache.BundleTTL < 0 {
		return fmt.Errorf("ttl values must not be negative")
	}
	return nil
}

// RedisEnabled reports whether any component needs a Redis connection.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Address != "" && (c.Session.Store == "redis" || c.Cache.Enabled)
}
