// Package config loads application configuration from file and environment.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Basemap BasemapConfig `yaml:"basemap" mapstructure:"basemap"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig configures the source dataset cache. The rivers dataset is the
// HydroRIVERS subset with UPLAND_SKM > 100 sq km; countries is Natural Earth
// admin-0 with disputed-territory records.
type DataConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	CountriesURL string `yaml:"countries_url" mapstructure:"countries_url"`
	RiversURL    string `yaml:"rivers_url" mapstructure:"rivers_url"`
}

// OutputConfig configures artifact output.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// BasemapConfig configures the background tile layer.
type BasemapConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	PrimaryURL    string `yaml:"primary_url" mapstructure:"primary_url"`
	FallbackURL   string `yaml:"fallback_url" mapstructure:"fallback_url"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	CacheEntries  int    `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ServerConfig configures the web form server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// releaseBase hosts both source datasets.
const releaseBase = "https://github.com/spatialthoughts/python-dataviz-web/releases/download/"

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RIVERMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.countries_url", releaseBase+"naturalearth/ne_10m_admin_0_countries_ind.zip")
	v.SetDefault("data.rivers_url", releaseBase+"hydrosheds/hydrorivers_100.gpkg")
	v.SetDefault("output.dir", "output")
	v.SetDefault("basemap.enabled", true)
	v.SetDefault("basemap.primary_url", "https://tiles.stadiamaps.com/tiles/stamen_terrain_background/{z}/{x}/{y}.png")
	v.SetDefault("basemap.fallback_url", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("basemap.user_agent", "rivermap/1.0")
	v.SetDefault("basemap.cache_entries", 512)
	v.SetDefault("basemap.cache_ttl_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// WriteDefault writes the default configuration to path as YAML.
func WriteDefault(path string) error {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return eris.Wrap(err, "config: unmarshal defaults")
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "config: write file")
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
