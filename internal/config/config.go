package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/housing-cli/internal/fetcher"
)

// Config holds the full application configuration.
type Config struct {
	Input     InputConfig     `yaml:"input" mapstructure:"input"`
	Aggregate AggregateConfig `yaml:"aggregate" mapstructure:"aggregate"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Mapbox    MapboxConfig    `yaml:"mapbox" mapstructure:"mapbox"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the census and coordinates tables.
// Census and Coordinates accept local paths or http(s)/ftp URLs.
type InputConfig struct {
	Census      string    `yaml:"census" mapstructure:"census"`
	Coordinates string    `yaml:"coordinates" mapstructure:"coordinates"`
	Source      string    `yaml:"source" mapstructure:"source"`
	TimeoutSecs int       `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	TempDir     string    `yaml:"temp_dir" mapstructure:"temp_dir"`
	CSV         CSVConfig `yaml:"csv" mapstructure:"csv"`
}

// CSVConfig controls parsing of delimited input files.
type CSVConfig struct {
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
	Comment    string `yaml:"comment" mapstructure:"comment"`
	LazyQuotes bool   `yaml:"lazy_quotes" mapstructure:"lazy_quotes"`
	TrimSpace  bool   `yaml:"trim_space" mapstructure:"trim_space"`
}

// Options converts the settings for the CSV reader. Empty strings keep the
// reader defaults.
func (c CSVConfig) Options() fetcher.CSVOptions {
	return fetcher.CSVOptions{
		Delimiter:  firstRune(c.Delimiter),
		Comment:    firstRune(c.Comment),
		LazyQuotes: c.LazyQuotes,
		TrimSpace:  c.TrimSpace,
	}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// AggregateConfig tunes the aggregation pipeline. TopN <= 0 ranks the
// default ten neighborhoods.
type AggregateConfig struct {
	TopN int `yaml:"top_n" mapstructure:"top_n"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir              string   `yaml:"dir" mapstructure:"dir"`
	UnitsCSV         string   `yaml:"units_csv" mapstructure:"units_csv"`
	Images           []string `yaml:"images" mapstructure:"images"`
	ImageTimeoutSecs int      `yaml:"image_timeout_secs" mapstructure:"image_timeout_secs"`
	Concurrency      int      `yaml:"concurrency" mapstructure:"concurrency"`
}

// DashboardConfig configures the tabbed dashboard page.
type DashboardConfig struct {
	Title     string `yaml:"title" mapstructure:"title"`
	PlotlyURL string `yaml:"plotly_url" mapstructure:"plotly_url"`
}

// MapboxConfig holds map rendering settings. Token is optional; without it
// the map falls back to the open-street-map style.
type MapboxConfig struct {
	Token string  `yaml:"token" mapstructure:"token"`
	Style string  `yaml:"style" mapstructure:"style"`
	Zoom  float64 `yaml:"zoom" mapstructure:"zoom"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
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
	v.SetEnvPrefix("HOUSING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("mapbox.token", "HOUSING_MAPBOX_TOKEN", "MAPBOX_API_KEY", "mapbox_api_key"); err != nil {
		return nil, eris.Wrap(err, "config: bind mapbox env")
	}

	// Defaults
	v.SetDefault("input.census", "Data/sfo_neighborhoods_census_data.csv")
	v.SetDefault("input.coordinates", "Data/neighborhoods_coordinates.csv")
	v.SetDefault("input.source", "file")
	v.SetDefault("input.timeout_secs", 30)
	v.SetDefault("input.temp_dir", "")
	v.SetDefault("input.csv.delimiter", ",")
	v.SetDefault("input.csv.comment", "")
	v.SetDefault("input.csv.lazy_quotes", false)
	v.SetDefault("input.csv.trim_space", false)
	v.SetDefault("aggregate.top_n", 10)
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.units_csv", "units_per_year.csv")
	v.SetDefault("output.images", []string{"parallel_categories", "parallel_coordinates", "sunburst"})
	v.SetDefault("output.image_timeout_secs", 30)
	v.SetDefault("output.concurrency", 4)
	v.SetDefault("dashboard.title", "San Francisco Housing Dashboard")
	v.SetDefault("dashboard.plotly_url", "https://cdn.plot.ly/plotly-2.35.2.min.js")
	v.SetDefault("mapbox.style", "open-street-map")
	v.SetDefault("mapbox.zoom", 11)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "housing.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks that the settings a command mode needs are present and sane.
// Modes: "aggregate", "dashboard", "import", "imports".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Input.Source {
	case "file", "store":
	default:
		errs = append(errs, fmt.Sprintf("input.source must be file or store, got %q", c.Input.Source))
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}

	for _, f := range []struct{ key, val string }{
		{"input.csv.delimiter", c.Input.CSV.Delimiter},
		{"input.csv.comment", c.Input.CSV.Comment},
	} {
		if utf8.RuneCountInString(f.val) > 1 {
			errs = append(errs, fmt.Sprintf("%s must be a single character, got %q", f.key, f.val))
		}
	}
	if d := c.Input.CSV.Delimiter; d != "" && d == c.Input.CSV.Comment {
		errs = append(errs, "input.csv.comment must differ from input.csv.delimiter")
	}

	needFiles := c.Input.Source == "file"
	needStore := c.Input.Source == "store"

	switch mode {
	case "aggregate":
	case "dashboard":
		if c.Output.Dir == "" {
			errs = append(errs, "output.dir is required")
		}
		if c.Output.Concurrency < 1 || c.Output.Concurrency > 32 {
			errs = append(errs, "output.concurrency must be between 1 and 32")
		}
	case "import":
		needFiles = true
		needStore = true
	case "imports":
		needFiles = false
		needStore = true
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needFiles {
		if c.Input.Census == "" {
			errs = append(errs, "input.census is required")
		}
		if c.Input.Coordinates == "" {
			errs = append(errs, "input.coordinates is required")
		}
	}
	if needStore && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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
