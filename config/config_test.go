package config

import (
	"reflect"
	"strings"
	"testing"

	"scadamap/columns"
	"scadamap/detect"
)

func TestValidateYAMLContent_ExampleYAMLIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("expected example config to validate: %v", err)
	}
	if cfg.Mapping.Threshold != 0.5 {
		t.Fatalf("unexpected threshold: %v", cfg.Mapping.Threshold)
	}
	if cfg.Store.Backend != "file" || cfg.Store.Policy != "overwrite" || cfg.Store.Path != "./mappings_config.json" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if !reflect.DeepEqual(cfg.DetectOptions(), detect.DefaultOptions()) {
		t.Fatalf("unexpected detect options: %+v", cfg.DetectOptions())
	}
}

func TestValidateYAMLContent_AppliesDefaultsToEmptyContent(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte("log:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Mapping.Threshold != 0.5 || cfg.Mapping.Fuzzy != "ratcliff" {
		t.Fatalf("unexpected mapping defaults: %+v", cfg.Mapping)
	}
	if cfg.Detect.MaxRows != 30 || cfg.Detect.MaxCols != 60 || cfg.Detect.MinRun != 2 {
		t.Fatalf("unexpected detect defaults: %+v", cfg.Detect)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestValidateYAMLContent_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "threshold above one", content: "mapping:\n  threshold: 1.5\n"},
		{name: "negative threshold", content: "mapping:\n  threshold: -0.1\n"},
		{name: "unknown fuzzy", content: "mapping:\n  fuzzy: jaro\n"},
		{name: "unknown driver", content: "database:\n  driver: mysql\n  dsn: x\n"},
		{name: "driver without dsn", content: "database:\n  driver: sqlite\n"},
		{name: "unknown backend", content: "store:\n  backend: redis\n"},
		{name: "unknown policy", content: "store:\n  policy: append\n"},
		{name: "zero min run", content: "detect:\n  min_run: 0\n"},
		{name: "single cell min run", content: "detect:\n  min_run: 1\n"},
		{name: "unknown log format", content: "log:\n  format: xml\n"},
		{name: "blank fallback entry", content: "columns:\n  fallback: [\"SR_NO\", \" \"]\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ValidateYAMLContent([]byte(tc.content)); err == nil {
				t.Fatalf("expected validation error")
			} else if !strings.Contains(err.Error(), "validation failed") {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateYAMLContent_NormalizesCase(t *testing.T) {
	t.Parallel()

	content := []byte(`database:
  driver: "SQLite"
  dsn: "./scada.db"
store:
  backend: "SQLITE"
  policy: "Merge"
mapping:
  fuzzy: "Levenshtein"
`)

	cfg, err := ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Store.Backend != "sqlite" || cfg.Store.Policy != "merge" || cfg.Mapping.Fuzzy != "levenshtein" {
		t.Fatalf("expected lower-cased values, got %+v", cfg)
	}
	if _, err := cfg.Scorer(); err != nil {
		t.Fatalf("expected levenshtein scorer: %v", err)
	}
}

func TestValidateYAMLContent_RejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := ValidateYAMLContent([]byte("mapping: [\n"))
	if err == nil || !strings.Contains(err.Error(), "read config content") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestFallbackColumns(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !reflect.DeepEqual(cfg.FallbackColumns(), columns.DefaultFallback()) {
		t.Fatalf("expected built-in fallback, got %v", cfg.FallbackColumns())
	}

	cfg, err = ValidateYAMLContent([]byte("columns:\n  fallback: [\"LINE\", \"SPEED\", \"LINE\"]\n"))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := cfg.FallbackColumns(); !reflect.DeepEqual(got, []string{"LINE", "SPEED"}) {
		t.Fatalf("unexpected fallback columns: %v", got)
	}
}
