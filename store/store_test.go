package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"scadamap/mapping"
)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleDocument() mapping.Document {
	return mapping.Document{
		"REPORT_TEST_TYPE":  "DATE_TIME",
		"REPORT_BATCH_NAME": "BATCH_NAME",
		"SUMMARY_QTY":       "QUANTITY",
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"mappings_config.json", "mappings.yaml", "mappings.yml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store := NewFileStore(filepath.Join(t.TempDir(), name), quietLogger())
			doc := sampleDocument()
			if err := store.Save(doc); err != nil {
				t.Fatalf("save: %v", err)
			}
			if got := store.Load(); !reflect.DeepEqual(got, doc) {
				t.Fatalf("expected %v, got %v", doc, got)
			}
		})
	}
}

func TestFileStore_WritesFlatJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mappings_config.json")
	if err := NewFileStore(path, quietLogger()).Save(mapping.Document{"REPORT_QTY": "QUANTITY"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(content); got != "{\n  \"REPORT_QTY\": \"QUANTITY\"\n}\n" {
		t.Fatalf("unexpected file content:\n%s", got)
	}
}

func TestFileStore_LoadMissingOrMalformedIsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if got := NewFileStore(filepath.Join(dir, "never-saved.json"), quietLogger()).Load(); len(got) != 0 {
		t.Fatalf("expected empty document, got %v", got)
	}

	malformed := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(malformed, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := NewFileStore(malformed, quietLogger()).Load()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil document, got %#v", got)
	}

	wrongShape := filepath.Join(dir, "nested.json")
	if err := os.WriteFile(wrongShape, []byte(`{"A": {"B": 1}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := NewFileStore(wrongShape, quietLogger()).Load(); len(got) != 0 {
		t.Fatalf("expected empty document for nested values, got %v", got)
	}
}

func TestFileStore_SaveOverwritesWholeDocument(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "m.json"), quietLogger())
	if err := store.Save(sampleDocument()); err != nil {
		t.Fatalf("save: %v", err)
	}
	next := mapping.Document{"OTHER_KEY": "DATA1"}
	if err := store.Save(next); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := store.Load(); !reflect.DeepEqual(got, next) {
		t.Fatalf("expected %v, got %v", next, got)
	}
}

func TestFileStore_FailedSaveKeepsPreviousArtifact(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}

	dir := filepath.Join(t.TempDir(), "locked")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	store := NewFileStore(filepath.Join(dir, "m.json"), quietLogger())
	if err := store.Save(sampleDocument()); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err := store.Save(mapping.Document{"X": "Y"})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if got := store.Load(); !reflect.DeepEqual(got, sampleDocument()) {
		t.Fatalf("previous artifact was modified: %v", got)
	}
	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestSQLiteStore_RoundTripAndOverwrite(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "mappings.db"), quietLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	if got := store.Load(); len(got) != 0 {
		t.Fatalf("expected empty document, got %v", got)
	}
	if err := store.Save(sampleDocument()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := store.Load(); !reflect.DeepEqual(got, sampleDocument()) {
		t.Fatalf("expected %v, got %v", sampleDocument(), got)
	}

	next := mapping.Document{"LINE_1_QTY": "QUANTITY"}
	if err := store.Save(next); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := store.Load(); !reflect.DeepEqual(got, next) {
		t.Fatalf("expected overwrite to %v, got %v", next, got)
	}
}

func TestApply_Policies(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "m.json"), quietLogger())
	if err := store.Save(mapping.Document{"A_X": "DATA1", "A_Y": "DATA2"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	written, err := Apply(store, mapping.Document{"A_Y": "DATA3"}, PolicyMerge)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := mapping.Document{"A_X": "DATA1", "A_Y": "DATA3"}
	if !reflect.DeepEqual(written, want) || !reflect.DeepEqual(store.Load(), want) {
		t.Fatalf("expected merged %v, got %v", want, store.Load())
	}

	if _, err := Apply(store, mapping.Document{"B_Z": "DATA4"}, PolicyOverwrite); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := store.Load(); !reflect.DeepEqual(got, mapping.Document{"B_Z": "DATA4"}) {
		t.Fatalf("expected overwrite, got %v", got)
	}

	if _, err := Apply(store, mapping.Document{}, "append"); err == nil {
		t.Fatalf("expected unsupported policy error")
	}
}

func TestOpen_Backends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fileStore, closeFn, err := Open("file", filepath.Join(dir, "m.json"), quietLogger())
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	_ = closeFn()
	if _, ok := fileStore.(*FileStore); !ok {
		t.Fatalf("expected FileStore, got %T", fileStore)
	}

	sqliteStore, closeFn, err := Open("SQLite", filepath.Join(dir, "m.db"), quietLogger())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer closeFn()
	if _, ok := sqliteStore.(*SQLiteStore); !ok {
		t.Fatalf("expected SQLiteStore, got %T", sqliteStore)
	}

	if _, _, err := Open("redis", "", quietLogger()); err == nil {
		t.Fatalf("expected unsupported backend error")
	}
}
