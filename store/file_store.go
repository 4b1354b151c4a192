package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"scadamap/mapping"
)

// FileStore keeps the document as a flat JSON object, or YAML mapping when
// the path ends in .yaml or .yml.
type FileStore struct {
	path   string
	logger logrus.FieldLogger
}

func NewFileStore(path string, logger logrus.FieldLogger) *FileStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) isYAML() bool {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func (s *FileStore) Load() mapping.Document {
	log := s.logger.WithField("path", s.path)

	content, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("cannot read mapping file, starting empty")
		}
		return mapping.Document{}
	}

	doc := mapping.Document{}
	if s.isYAML() {
		err = yaml.Unmarshal(content, &doc)
	} else {
		err = json.Unmarshal(content, &doc)
	}
	if err != nil {
		log.WithError(err).Warn("malformed mapping file, starting empty")
		return mapping.Document{}
	}
	if doc == nil {
		doc = mapping.Document{}
	}
	return doc
}

// Save replaces the artifact atomically: the document is written to a temp
// file in the same directory and renamed over the target.
func (s *FileStore) Save(doc mapping.Document) error {
	if doc == nil {
		doc = mapping.Document{}
	}
	content, err := s.encode(doc)
	if err != nil {
		return persistenceError("encode mapping document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistenceError("create mapping directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return persistenceError("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return persistenceError("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return persistenceError("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return persistenceError("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return persistenceError("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return persistenceError("replace %s: %w", s.path, err)
	}
	committed = true

	s.logger.WithFields(logrus.Fields{"path": s.path, "mappings": len(doc)}).Debug("mapping document saved")
	return nil
}

func (s *FileStore) encode(doc mapping.Document) ([]byte, error) {
	if s.isYAML() {
		return yaml.Marshal(map[string]string(doc))
	}
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(content, '\n'), nil
}
