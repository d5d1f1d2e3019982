package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Quality   QualityConfig   `yaml:"quality" mapstructure:"quality"`
	Taxonomy  TaxonomyConfig  `yaml:"taxonomy" mapstructure:"taxonomy"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Governor  GovernorConfig  `yaml:"governor" mapstructure:"governor"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// QualityConfig holds normalization and matching thresholds.
type QualityConfig struct {
	MinNameLength       int     `yaml:"min_name_length" mapstructure:"min_name_length"`
	MaxNameLength       int     `yaml:"max_name_length" mapstructure:"max_name_length"`
	ListFieldCap        int     `yaml:"list_field_cap" mapstructure:"list_field_cap"`
	FuzzyMatchThreshold float64 `yaml:"fuzzy_match_threshold" mapstructure:"fuzzy_match_threshold"`
	DefaultPhoneRegion  string  `yaml:"default_phone_region" mapstructure:"default_phone_region"`
}

// TaxonomyConfig holds the fixed enumeration tables consumed by the
// normalizer and resolver. Kept in configuration rather than package-level
// state so tests and callers can swap tables.
type TaxonomyConfig struct {
	Industries       []string          `yaml:"industries" mapstructure:"industries"`
	IndustrySynonyms map[string]string `yaml:"industry_synonyms" mapstructure:"industry_synonyms"`
	CompanySizes     []string          `yaml:"company_sizes" mapstructure:"company_sizes"`
}

// EnrichConfig configures the enrichment orchestrator.
type EnrichConfig struct {
	BatchSize      int           `yaml:"batch_size" mapstructure:"batch_size"`
	Workers        int           `yaml:"workers" mapstructure:"workers"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// GovernorConfig configures the adaptive rate governor.
type GovernorConfig struct {
	BaseRate           float64       `yaml:"base_rate" mapstructure:"base_rate"`
	MinRate            float64       `yaml:"min_rate" mapstructure:"min_rate"`
	MaxRate            float64       `yaml:"max_rate" mapstructure:"max_rate"`
	PerMinute          int           `yaml:"per_minute" mapstructure:"per_minute"`
	PerHour            int           `yaml:"per_hour" mapstructure:"per_hour"`
	IncreaseFactor     float64       `yaml:"increase_factor" mapstructure:"increase_factor"`
	DecreaseFactor     float64       `yaml:"decrease_factor" mapstructure:"decrease_factor"`
	AdjustmentInterval time.Duration `yaml:"adjustment_interval" mapstructure:"adjustment_interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultIndustries is the fixed industry enumeration.
var DefaultIndustries = []string{
	"Technology", "FinTech", "Healthcare", "E-commerce", "Manufacturing",
	"Professional Services", "Real Estate", "F&B", "Education", "Logistics",
	"Construction", "Retail", "Energy", "Media", "Automotive", "Agriculture",
	"Tourism", "Government", "Non-Profit", "Other",
}

// DefaultIndustrySynonyms maps common variants to canonical industries.
var DefaultIndustrySynonyms = map[string]string{
	"Information Technology": "Technology",
	"IT":                     "Technology",
	"Software":               "Technology",
	"Fintech":                "FinTech",
	"Financial Technology":   "FinTech",
	"Banking":                "FinTech",
	"Finance":                "FinTech",
	"Food & Beverage":        "F&B",
	"Food And Beverage":      "F&B",
	"Restaurant":             "F&B",
	"Professional Service":   "Professional Services",
	"Consulting":             "Professional Services",
	"Property":               "Real Estate",
	"Medical":                "Healthcare",
	"E-Commerce":             "E-commerce",
	"Ecommerce":              "E-commerce",
	"Online Retail":          "E-commerce",
}

// DefaultCompanySizes is the ordered size-category enumeration.
var DefaultCompanySizes = []string{
	"Micro (1-10)", "Small (11-50)", "Medium (51-200)",
	"Large (201-1000)", "Enterprise (1000+)", "Unknown",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PIPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "companies.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	// AutomaticEnv only surfaces env values for keys viper already knows,
	// so every key needs a default, including the empty ones.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 500)
	v.SetDefault("anthropic.temperature", 0.1)
	v.SetDefault("quality.min_name_length", 2)
	v.SetDefault("quality.max_name_length", 200)
	v.SetDefault("quality.list_field_cap", 10)
	v.SetDefault("quality.fuzzy_match_threshold", 85)
	v.SetDefault("quality.default_phone_region", "SG")
	v.SetDefault("taxonomy.industries", DefaultIndustries)
	v.SetDefault("taxonomy.industry_synonyms", DefaultIndustrySynonyms)
	v.SetDefault("taxonomy.company_sizes", DefaultCompanySizes)
	v.SetDefault("enrich.batch_size", 25)
	v.SetDefault("enrich.workers", 4)
	v.SetDefault("enrich.request_timeout", 30*time.Second)
	v.SetDefault("governor.base_rate", 2.0)
	v.SetDefault("governor.min_rate", 0.1)
	v.SetDefault("governor.max_rate", 10.0)
	v.SetDefault("governor.per_minute", 100)
	v.SetDefault("governor.per_hour", 5000)
	v.SetDefault("governor.increase_factor", 1.2)
	v.SetDefault("governor.decrease_factor", 0.8)
	v.SetDefault("governor.adjustment_interval", time.Minute)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
