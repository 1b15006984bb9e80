// Package config loads crawler settings from an optional YAML file with
// environment-variable overrides (TENDERWATCH_* keys).
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	BaseURL  string        `mapstructure:"baseURL"`
	MaxPages int           `mapstructure:"maxPages"`
	Timeout  time.Duration `mapstructure:"timeout"`
	WaitMin  time.Duration `mapstructure:"waitMin"`
	WaitMax  time.Duration `mapstructure:"waitMax"`

	LogLevel string `mapstructure:"logLevel"`
	LogFile  string `mapstructure:"logFile"`

	Fetcher Fetcher `mapstructure:"fetcher"`
	API     API     `mapstructure:"api"`
	Storage Storage `mapstructure:"storage"`
}

type Fetcher struct {
	ProxyURLs []string `mapstructure:"proxy"`
	// Sustained request budget against the origin, requests per minute.
	RatePerMinute int `mapstructure:"ratePerMinute"`
}

type API struct {
	Addr    string   `mapstructure:"addr"`
	Origins []string `mapstructure:"origins"`
	// Default page budget for requests that do not specify max_pages.
	DefaultPages int `mapstructure:"defaultPages"`
}

type Storage struct {
	Enabled    bool   `mapstructure:"enabled"`
	SQLURL     string `mapstructure:"sqlURL"`
	BatchCount int    `mapstructure:"batchCount"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("baseURL", "https://easytenders.co.za/tenders")
	v.SetDefault("maxPages", 5)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("waitMin", 1*time.Second)
	v.SetDefault("waitMax", 3*time.Second)
	v.SetDefault("logLevel", "INFO")
	v.SetDefault("fetcher.ratePerMinute", 20)
	v.SetDefault("api.addr", ":5000")
	v.SetDefault("api.defaultPages", 3)
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.batchCount", 10)
}

// Load reads configuration from path, or from ./config.yaml when path is
// empty. A missing file is not an error; defaults and environment
// variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TENDERWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.WaitMax < cfg.WaitMin {
		cfg.WaitMax = cfg.WaitMin
	}

	return &cfg, nil
}
