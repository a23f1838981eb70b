// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ScoringConfig holds the weights, tier cutoffs, and keyword tables for the
// composite scoring engine. Defaults live in the scoring package.
type ScoringConfig struct {
	FitWeight          float64 `yaml:"fit_weight" mapstructure:"fit_weight"`
	IntentWeight       float64 `yaml:"intent_weight" mapstructure:"intent_weight"`
	ValueWeight        float64 `yaml:"value_weight" mapstructure:"value_weight"`
	DisplacementWeight float64 `yaml:"displacement_weight" mapstructure:"displacement_weight"`

	HotThreshold  int `yaml:"hot_threshold" mapstructure:"hot_threshold"`
	WarmThreshold int `yaml:"warm_threshold" mapstructure:"warm_threshold"`

	Workers int `yaml:"workers" mapstructure:"workers"`

	// KeywordsFile optionally points at a YAML file overriding keyword tables.
	KeywordsFile string        `yaml:"keywords_file" mapstructure:"keywords_file"`
	Keywords     KeywordTables `yaml:"keywords" mapstructure:"keywords"`
}

// KeywordTables holds the enumerated matching lists used by the factor
// calculators. All matching against them is case-insensitive.
type KeywordTables struct {
	HighValueVerticals    []string `yaml:"high_value_verticals" mapstructure:"high_value_verticals"`
	MediumValueVerticals  []string `yaml:"medium_value_verticals" mapstructure:"medium_value_verticals"`
	USCountries           []string `yaml:"us_countries" mapstructure:"us_countries"`
	Tier1Countries        []string `yaml:"tier1_countries" mapstructure:"tier1_countries"`
	WeakSearchPlatforms   []string `yaml:"weak_search_platforms" mapstructure:"weak_search_platforms"`
	StrongSearchPlatforms []string `yaml:"strong_search_platforms" mapstructure:"strong_search_platforms"`
	OpenSourceEngines     []string `yaml:"open_source_engines" mapstructure:"open_source_engines"`
	EasilyDisplaced       []string `yaml:"easily_displaced" mapstructure:"easily_displaced"`
	OwnProduct            string   `yaml:"own_product" mapstructure:"own_product"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PARTNERFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("scoring.fit_weight", 0.25)
	v.SetDefault("scoring.intent_weight", 0.25)
	v.SetDefault("scoring.value_weight", 0.25)
	v.SetDefault("scoring.displacement_weight", 0.25)
	v.SetDefault("scoring.hot_threshold", 70)
	v.SetDefault("scoring.warm_threshold", 40)
	v.SetDefault("scoring.workers", 8)

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
