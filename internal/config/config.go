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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Thermo ThermoConfig `yaml:"thermo" mapstructure:"thermo"`
	Fit    FitConfig    `yaml:"fit" mapstructure:"fit"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ThermoConfig configures statistical-mechanics evaluation.
type ThermoConfig struct {
	Tmin                 float64 `yaml:"tmin" mapstructure:"tmin"`
	Tmax                 float64 `yaml:"tmax" mapstructure:"tmax"`
	GridPoints           int     `yaml:"grid_points" mapstructure:"grid_points"`
	FrequencyScaleFactor float64 `yaml:"frequency_scale_factor" mapstructure:"frequency_scale_factor"`
}

// FitConfig configures the NASA polynomial fit.
type FitConfig struct {
	Tmid          float64 `yaml:"tmid" mapstructure:"tmid"`
	SearchTmid    bool    `yaml:"search_tmid" mapstructure:"search_tmid"`
	Candidates    int     `yaml:"candidates" mapstructure:"candidates"`
	Points        int     `yaml:"points" mapstructure:"points"`
	Tolerance     float64 `yaml:"tolerance" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"max_iterations" mapstructure:"max_iterations"`
	AllowPoorFit  bool    `yaml:"allow_poor_fit" mapstructure:"allow_poor_fit"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentSpecies int `yaml:"max_concurrent_species" mapstructure:"max_concurrent_species"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port          int     `yaml:"port" mapstructure:"port"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("THERMOFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "thermofit.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("batch.max_concurrent_species", 5)
	v.SetDefault("thermo.tmin", 10.0)
	v.SetDefault("thermo.tmax", 3000.0)
	v.SetDefault("thermo.grid_points", 60)
	v.SetDefault("thermo.frequency_scale_factor", 1.0)
	v.SetDefault("fit.tmid", 1000.0)
	v.SetDefault("fit.search_tmid", true)
	v.SetDefault("fit.candidates", 9)
	v.SetDefault("fit.points", 50)
	v.SetDefault("fit.tolerance", 0.05)
	v.SetDefault("fit.max_iterations", 25)

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

// Validate checks configuration bounds before any command runs.
func (c *Config) Validate() error {
	var problems []string

	if c.Store.Path == "" {
		problems = append(problems, "store.path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Server.RatePerSecond <= 0 {
		problems = append(problems, "server.rate_per_second must be > 0")
	}
	if c.Server.RateBurst < 1 {
		problems = append(problems, "server.rate_burst must be >= 1")
	}
	if c.Batch.MaxConcurrentSpecies < 1 || c.Batch.MaxConcurrentSpecies > 50 {
		problems = append(problems, "batch.max_concurrent_species must be between 1 and 50")
	}
	if c.Thermo.Tmin <= 0 {
		problems = append(problems, "thermo.tmin must be > 0")
	}
	if c.Thermo.Tmax <= c.Thermo.Tmin {
		problems = append(problems, "thermo.tmax must be > thermo.tmin")
	}
	if c.Thermo.GridPoints < 2 {
		problems = append(problems, "thermo.grid_points must be >= 2")
	}
	if c.Thermo.FrequencyScaleFactor <= 0 || c.Thermo.FrequencyScaleFactor > 2 {
		problems = append(problems, "thermo.frequency_scale_factor must be in (0, 2]")
	}
	if c.Fit.Tmid <= 0 {
		problems = append(problems, "fit.tmid must be > 0")
	}
	if c.Fit.Candidates < 1 {
		problems = append(problems, "fit.candidates must be >= 1")
	}
	if c.Fit.Points < 10 {
		problems = append(problems, "fit.points must be >= 10")
	}
	if c.Fit.Tolerance <= 0 {
		problems = append(problems, "fit.tolerance must be > 0")
	}
	if c.Fit.MaxIterations < 1 {
		problems = append(problems, "fit.max_iterations must be >= 1")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
