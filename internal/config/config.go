package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Output   OutputConfig   `mapstructure:"output"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ScraperConfig holds traversal and extraction configuration
type ScraperConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	ParametricPath string `mapstructure:"parametric_path"`
	SearchPath     string `mapstructure:"search_path"`
	Workers        int    `mapstructure:"workers"`
	RecordCap      int    `mapstructure:"record_cap"`

	// Settle delays in seconds: rendered pages keep loading content
	// asynchronously after navigation completes.
	DiscoverySettle int `mapstructure:"discovery_settle"`
	CategorySettle  int `mapstructure:"category_settle"`
	SearchSettle    int `mapstructure:"search_settle"`
}

// ParametricURL returns the category-discovery address.
func (c ScraperConfig) ParametricURL() string {
	return c.BaseURL + c.ParametricPath
}

// SearchURL returns the results address for one part number.
func (c ScraperConfig) SearchURL(mpn string) string {
	return c.BaseURL + c.SearchPath + mpn
}

// BrowserConfig holds rendering-session configuration; the flags are opaque
// pass-through options for the browser launcher.
type BrowserConfig struct {
	Headless           bool     `mapstructure:"headless"`
	NoSandbox          bool     `mapstructure:"no_sandbox"`
	DisableWebSecurity bool     `mapstructure:"disable_web_security"`
	StartMaximized     bool     `mapstructure:"start_maximized"`
	NavTimeout         int      `mapstructure:"nav_timeout"`  // seconds
	WaitTimeout        int      `mapstructure:"wait_timeout"` // seconds
	NavsPerSecond      int      `mapstructure:"navs_per_second"`
	Proxies            []string `mapstructure:"proxies"`
}

// OutputConfig holds CSV persistence configuration
type OutputConfig struct {
	Dir              string `mapstructure:"dir"`
	FilePrefix       string `mapstructure:"file_prefix"`
	AutosaveInterval int    `mapstructure:"autosave_interval"` // seconds
}

// RedisConfig holds optional run-progress state configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// DatabaseConfig holds the optional Postgres mirror sink configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Load loads configuration from an optional config.yaml with environment
// variable overrides. A missing file falls back to defaults entirely: the
// scraper requires no runtime inputs.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("scraper.base_url", "https://www.findchips.com")
	viper.SetDefault("scraper.parametric_path", "/parametric")
	viper.SetDefault("scraper.search_path", "/search/")
	viper.SetDefault("scraper.workers", 6)
	viper.SetDefault("scraper.record_cap", 500000)
	viper.SetDefault("scraper.discovery_settle", 8)
	viper.SetDefault("scraper.category_settle", 5)
	viper.SetDefault("scraper.search_settle", 6)

	viper.SetDefault("browser.headless", true)
	viper.SetDefault("browser.no_sandbox", true)
	viper.SetDefault("browser.disable_web_security", true)
	viper.SetDefault("browser.start_maximized", true)
	viper.SetDefault("browser.nav_timeout", 30)
	viper.SetDefault("browser.wait_timeout", 10)
	viper.SetDefault("browser.navs_per_second", 1)

	viper.SetDefault("output.dir", "output")
	viper.SetDefault("output.file_prefix", "stock")
	viper.SetDefault("output.autosave_interval", 300)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "supplychain")
	viper.SetDefault("database.user", "supply_user")
	viper.SetDefault("database.password", "supply_pass")
}
