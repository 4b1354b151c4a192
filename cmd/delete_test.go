package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"scadamap/mapping"
)

func TestConfirmDeletePrompt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "uppercase Y confirms", input: "Y\n", want: true},
		{name: "lowercase y does not confirm", input: "y\n", want: false},
		{name: "N does not confirm", input: "N\n", want: false},
		{name: "empty does not confirm", input: "\n", want: false},
		{name: "Y without newline confirms", input: "Y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirmDeletePrompt(bytes.NewBufferString(tt.input), &out, "./mappings_config.json")
			if err != nil {
				t.Fatalf("confirm prompt returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if out.Len() == 0 {
				t.Fatalf("expected prompt output")
			}
		})
	}
}

func TestRemoveKeys(t *testing.T) {
	doc := mapping.Document{
		"REPORT_TEST_TYPE":  "DATE_TIME",
		"REPORT_BATCH_NAME": "BATCH_NAME",
	}

	got, removed, missing := removeKeys(doc, []string{"report_test_type", "REPORT_OPERATOR"})
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if !reflect.DeepEqual(missing, []string{"REPORT_OPERATOR"}) {
		t.Fatalf("unexpected missing keys: %v", missing)
	}
	if !reflect.DeepEqual(got, mapping.Document{"REPORT_BATCH_NAME": "BATCH_NAME"}) {
		t.Fatalf("unexpected document: %v", got)
	}
	if len(doc) != 2 {
		t.Fatalf("expected input document to stay unchanged")
	}
}

func TestRemoveKeysNormalizesLikeStoredKeys(t *testing.T) {
	doc := mapping.Document{
		mapping.SheetQualifiedKey("Report", "Straße"):     "STREET",
		mapping.SheetQualifiedKey("Line 1", "Batch Name"): "BATCH_NAME",
	}

	got, removed, missing := removeKeys(doc, []string{"report straße", " line 1 batch  name "})
	if removed != 2 || len(missing) != 0 {
		t.Fatalf("expected both keys removed, got removed=%d missing=%v", removed, missing)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty document, got %v", got)
	}
}

func TestRemoveMappingArtifact(t *testing.T) {
	t.Run("deletes existing document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mappings_config.json")
		if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
			t.Fatalf("write mapping document: %v", err)
		}

		removed, err := removeMappingArtifact(path)
		if err != nil || !removed {
			t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected file to be deleted")
		}
	})

	t.Run("missing document is not an error", func(t *testing.T) {
		removed, err := removeMappingArtifact(filepath.Join(t.TempDir(), "missing.json"))
		if err != nil || removed {
			t.Fatalf("expected no-op, got removed=%v err=%v", removed, err)
		}
	})

	t.Run("fails for directory path", func(t *testing.T) {
		if _, err := removeMappingArtifact(t.TempDir()); err == nil {
			t.Fatalf("expected error for directory path")
		}
	})
}
