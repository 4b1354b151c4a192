package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"scadamap/columns"
	"scadamap/config"
	"scadamap/mapping"
	"scadamap/store"
)

// overrides carries command flags that take precedence over config values.
type overrides struct {
	driver  string
	dsn     string
	table   string
	backend string
	path    string
	policy  string
}

func (o overrides) apply(cfg *config.Config) {
	set := func(target *string, value string) {
		if value = strings.TrimSpace(value); value != "" {
			*target = value
		}
	}
	set(&cfg.Database.Driver, strings.ToLower(o.driver))
	set(&cfg.Database.DSN, o.dsn)
	set(&cfg.Database.Table, o.table)
	set(&cfg.Store.Backend, strings.ToLower(o.backend))
	set(&cfg.Store.Path, o.path)
	set(&cfg.Store.Policy, strings.ToLower(o.policy))
}

// loadConfig validates the active config and configures the standard logger
// from its log section.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}
	if err := configureLogger(logrus.StandardLogger(), cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configureLogger(logger *logrus.Logger, cfg config.LogConfig) error {
	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(parsed)
	logger.SetOutput(os.Stderr)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// candidateSource returns the live schema (when a driver is configured)
// backed by the static fallback list. The returned close func is never nil.
func candidateSource(cfg *config.Config, logger logrus.FieldLogger) (mapping.CandidateSource, func() error, error) {
	fallback := columns.NewStatic(cfg.FallbackColumns())
	noop := func() error { return nil }

	if strings.TrimSpace(cfg.Database.Driver) == "" {
		return fallback, noop, nil
	}

	live, err := columns.OpenLiveSchema(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.Table)
	if err != nil {
		return nil, noop, err
	}
	return columns.WithFallback(live, fallback, logger), live.Close, nil
}

func newGenerator(cfg *config.Config, logger logrus.FieldLogger) (*mapping.Generator, error) {
	scorer, err := cfg.Scorer()
	if err != nil {
		return nil, err
	}
	return mapping.NewGenerator(
		mapping.WithDetector(detectorFor(cfg)),
		mapping.WithScorer(scorer),
		mapping.WithLogger(logger),
	), nil
}

func openStore(cfg *config.Config, logger logrus.FieldLogger) (store.Store, func() error, error) {
	return store.Open(cfg.Store.Backend, cfg.Store.Path, logger)
}

// resolveThreshold prefers an explicitly set flag over the configured value.
func resolveThreshold(flagChanged bool, flagValue, configured float64) (float64, error) {
	if !flagChanged {
		return configured, nil
	}
	if flagValue < 0 || flagValue > 1 {
		return 0, fmt.Errorf("invalid --threshold %v (expected 0..1)", flagValue)
	}
	return flagValue, nil
}
