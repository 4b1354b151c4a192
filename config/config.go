package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"scadamap/columns"
	"scadamap/detect"
	"scadamap/mapping"
	"scadamap/similarity"
	"scadamap/store"
)

const (
	KeyMappingThreshold = "mapping.threshold"
	KeyMappingFuzzy     = "mapping.fuzzy"
	KeyDetectMaxRows    = "detect.max_rows"
	KeyDetectMaxCols    = "detect.max_cols"
	KeyDetectMinRun     = "detect.min_run"
	KeyDetectAllBands   = "detect.all_bands"
	KeyDatabaseDriver   = "database.driver"
	KeyDatabaseDSN      = "database.dsn"
	KeyDatabaseTable    = "database.table"
	KeyColumnsFallback  = "columns.fallback"
	KeyStoreBackend     = "store.backend"
	KeyStorePath        = "store.path"
	KeyStorePolicy      = "store.policy"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
)

type Config struct {
	Mapping  MappingConfig  `mapstructure:"mapping"`
	Detect   DetectConfig   `mapstructure:"detect"`
	Database DatabaseConfig `mapstructure:"database"`
	Columns  ColumnsConfig  `mapstructure:"columns"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
}

type MappingConfig struct {
	Threshold float64 `mapstructure:"threshold" validate:"gte=0,lte=1"`
	Fuzzy     string  `mapstructure:"fuzzy" validate:"omitempty,oneof=ratcliff levenshtein"`
}

type DetectConfig struct {
	MaxRows  int  `mapstructure:"max_rows" validate:"gte=0"`
	MaxCols  int  `mapstructure:"max_cols" validate:"gte=0"`
	MinRun   int  `mapstructure:"min_run" validate:"gte=2"`
	AllBands bool `mapstructure:"all_bands"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=sqlite pgx postgres postgresql"`
	DSN    string `mapstructure:"dsn" validate:"required_with=Driver"`
	Table  string `mapstructure:"table"`
}

type ColumnsConfig struct {
	Fallback []string `mapstructure:"fallback"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=file sqlite"`
	Path    string `mapstructure:"path" validate:"required"`
	Policy  string `mapstructure:"policy" validate:"required,oneof=overwrite merge"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// DetectOptions converts the detect section into detector options.
func (c *Config) DetectOptions() detect.Options {
	return detect.Options{
		MaxRows:  c.Detect.MaxRows,
		MaxCols:  c.Detect.MaxCols,
		MinRun:   c.Detect.MinRun,
		AllBands: c.Detect.AllBands,
	}
}

// Scorer builds the similarity scorer for the configured fuzzy algorithm.
func (c *Config) Scorer() (*similarity.Scorer, error) {
	return similarity.ForAlgorithm(c.Mapping.Fuzzy)
}

// FallbackColumns returns the configured fallback list, or the built-in
// SCADA columns when none is configured.
func (c *Config) FallbackColumns() []string {
	names := columns.Unique(c.Columns.Fallback)
	if len(names) == 0 {
		return columns.DefaultFallback()
	}
	return names
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# scadamap configuration
mapping:
  threshold: 0.5
  fuzzy: "ratcliff"

detect:
  max_rows: 30
  max_cols: 60
  min_run: 2
  all_bands: false

# Leave driver empty to map against columns.fallback only.
database:
  driver: ""
  dsn: ""
  table: ""

columns:
  fallback: []

store:
  backend: "file"
  path: "./mappings_config.json"
  policy: "overwrite"

log:
  level: "info"
  format: "text"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Mapping.Fuzzy = strings.ToLower(strings.TrimSpace(cfg.Mapping.Fuzzy))
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Store.Policy = strings.ToLower(strings.TrimSpace(cfg.Store.Policy))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateFallback(cfg.Columns.Fallback); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyMappingThreshold, mapping.DefaultThreshold)
	v.SetDefault(KeyMappingFuzzy, similarity.AlgorithmRatcliff)
	v.SetDefault(KeyDetectMaxRows, detect.DefaultMaxRows)
	v.SetDefault(KeyDetectMaxCols, detect.DefaultMaxCols)
	v.SetDefault(KeyDetectMinRun, detect.DefaultMinRun)
	v.SetDefault(KeyDetectAllBands, false)
	v.SetDefault(KeyDatabaseDriver, "")
	v.SetDefault(KeyDatabaseDSN, "")
	v.SetDefault(KeyDatabaseTable, "")
	v.SetDefault(KeyColumnsFallback, []string{})
	v.SetDefault(KeyStoreBackend, store.BackendFile)
	v.SetDefault(KeyStorePath, store.DefaultPath)
	v.SetDefault(KeyStorePolicy, store.PolicyOverwrite)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

func validateFallback(names []string) error {
	if len(names) == 0 {
		return nil
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("validation failed: columns.fallback[%d] must not be blank", i)
		}
	}
	return nil
}
