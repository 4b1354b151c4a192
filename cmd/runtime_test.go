package cmd

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"scadamap/columns"
	"scadamap/config"
	"scadamap/store"
)

func exampleConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.ValidateYAMLContent([]byte(config.ExampleYAML()))
	if err != nil {
		t.Fatalf("validate example config: %v", err)
	}
	return cfg
}

func TestOverridesApply(t *testing.T) {
	t.Parallel()

	cfg := exampleConfig(t)
	overrides{driver: "SQLite", dsn: "./scada.db", policy: "Merge", path: "  "}.apply(cfg)

	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "./scada.db" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Store.Policy != store.PolicyMerge {
		t.Fatalf("unexpected policy: %q", cfg.Store.Policy)
	}
	if cfg.Store.Path != store.DefaultPath || cfg.Store.Backend != store.BackendFile {
		t.Fatalf("expected blank overrides to keep config values, got %+v", cfg.Store)
	}
}

func TestResolveThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		changed    bool
		flagValue  float64
		configured float64
		want       float64
		wantErr    bool
	}{
		{name: "config when flag unset", changed: false, flagValue: 0.5, configured: 0.7, want: 0.7},
		{name: "flag wins", changed: true, flagValue: 0.6, configured: 0.7, want: 0.6},
		{name: "zero flag", changed: true, flagValue: 0, configured: 0.7, want: 0},
		{name: "out of range", changed: true, flagValue: 1.2, configured: 0.7, wantErr: true},
	}

	for _, tt := range tests {
		got, err := resolveThreshold(tt.changed, tt.flagValue, tt.configured)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestCandidateSourceWithoutDatabaseUsesFallback(t *testing.T) {
	t.Parallel()

	cfg := exampleConfig(t)
	source, closeSource, err := candidateSource(cfg, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("candidate source: %v", err)
	}
	defer closeSource()

	set, err := source.Candidates(context.Background())
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if set.Source != columns.SourceStatic || !reflect.DeepEqual(set.Names, columns.DefaultFallback()) {
		t.Fatalf("unexpected candidates: %+v", set)
	}
}

func TestCandidateSourceReadsLiveSQLiteTable(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "scada.db")
	db, err := sql.Open(columns.DriverSQLite, dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE batch_log (SR_NO INTEGER, DATE_TIME TEXT, LINE_SPEED REAL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	db.Close()

	cfg := exampleConfig(t)
	overrides{driver: "sqlite", dsn: dbPath, table: "batch_log"}.apply(cfg)

	source, closeSource, err := candidateSource(cfg, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("candidate source: %v", err)
	}
	defer closeSource()

	set, err := source.Candidates(context.Background())
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if !reflect.DeepEqual(set.Names, []string{"SR_NO", "DATE_TIME", "LINE_SPEED"}) {
		t.Fatalf("unexpected live columns: %+v", set)
	}
}

func TestConfigureLogger(t *testing.T) {
	t.Parallel()

	logger := logrus.New()
	if err := configureLogger(logger, config.LogConfig{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("configure logger: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("unexpected level: %v", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter, got %T", logger.Formatter)
	}

	if err := configureLogger(logger, config.LogConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestMaskDSN(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"postgres://scada:secret@db:5432/plant": "postgres://scada:***@db:5432/plant",
		"postgres://scada@db/plant":             "postgres://scada@db/plant",
		"./scada.db":                            "./scada.db",
	}
	for dsn, want := range tests {
		if got := maskDSN(dsn); got != want {
			t.Fatalf("maskDSN(%q) = %q, want %q", dsn, got, want)
		}
	}
}
