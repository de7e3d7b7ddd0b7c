package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research engine.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// CorpusConfig locates the legal document corpus on disk.
type CorpusConfig struct {
	// Root is the directory that holds the category folders.
	Root string `mapstructure:"root"`
	// FolderFile optionally points at a yaml file overriding the built-in
	// category -> folder table.
	FolderFile string `mapstructure:"folder_file"`
}

// LLMConfig contains completion provider settings.
type LLMConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	DeepThinkModel string        `mapstructure:"deep_think_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

// SearchConfig bounds the retrieval pipeline.
type SearchConfig struct {
	MaxSources       int `mapstructure:"max_sources"`
	MaxSubQueries    int `mapstructure:"max_sub_queries"`
	FolderSampleCap  int `mapstructure:"folder_sample_cap"`
	ConceptSampleCap int `mapstructure:"concept_sample_cap"`
	HopCandidateCap  int `mapstructure:"hop_candidate_cap"`
	HistoryTurns     int `mapstructure:"history_turns"`
}

// CacheConfig selects and tunes the cache backing store.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend       string        `mapstructure:"backend"`
	Redis         RedisConfig   `mapstructure:"redis"`
	QueryTTL      time.Duration `mapstructure:"query_ttl"`
	AnswerTTL     time.Duration `mapstructure:"answer_ttl"`
	DeepThinkTTL  time.Duration `mapstructure:"deep_think_ttl"`
	CompletionTTL time.Duration `mapstructure:"completion_ttl"`
}

// RedisConfig contains redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Validate() error {
	if r.Addr == "" {
		return fmt.Errorf("cache.redis.addr must be set when cache.backend is redis")
	}
	return nil
}

// TelemetryConfig contains monitoring settings.
type TelemetryConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort <= 0 {
		return fmt.Errorf("telemetry.metrics_port must be > 0 when telemetry is enabled")
	}
	return nil
}

// LoadConfig reads configuration from the given file, or from the default
// search paths when path is empty. Environment variables prefixed with
// LEXSEARCH_ override file values.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", 90*time.Second)
	viper.SetDefault("server.address", ":10020")
	viper.SetDefault("corpus.root", filepath.Join("data", "legal-database"))
	viper.SetDefault("llm.base_url", "https://api.openai.com")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.deep_think_model", "deepseek-reasoner")
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("llm.max_retries", 1)
	viper.SetDefault("search.max_sources", 15)
	viper.SetDefault("search.max_sub_queries", 3)
	viper.SetDefault("search.folder_sample_cap", 50)
	viper.SetDefault("search.concept_sample_cap", 5)
	viper.SetDefault("search.hop_candidate_cap", 3)
	viper.SetDefault("search.history_turns", 6)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.query_ttl", time.Hour)
	viper.SetDefault("cache.answer_ttl", 2*time.Hour)
	viper.SetDefault("cache.deep_think_ttl", 30*time.Minute)
	viper.SetDefault("cache.completion_ttl", 4*time.Hour)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("LEXSEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus env cover every setting.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if config.LLM.APIKey == "" {
		config.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if config.Cache.Backend == "redis" {
		if err := config.Cache.Redis.Validate(); err != nil {
			panic(err)
		}
	}
	if err := config.Telemetry.Validate(); err != nil {
		panic(err)
	}

	return &config
}
