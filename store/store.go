// Package store persists mapping documents. Loading never fails: a missing
// or unreadable artifact loads as an empty document.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"scadamap/mapping"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	PolicyOverwrite = "overwrite"
	PolicyMerge     = "merge"

	DefaultPath = "./mappings_config.json"
)

// ErrPersistence wraps every failed save.
var ErrPersistence = errors.New("mapping persistence failed")

type Store interface {
	Save(doc mapping.Document) error
	Load() mapping.Document
}

// Open returns the store for a backend name.
func Open(backend, path string, logger logrus.FieldLogger) (Store, func() error, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(path, logger), func() error { return nil }, nil
	case BackendSQLite:
		sqliteStore, err := OpenSQLite(path, logger)
		if err != nil {
			return nil, nil, err
		}
		return sqliteStore, sqliteStore.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q (supported: %s, %s)", backend, BackendFile, BackendSQLite)
	}
}

// Apply saves doc according to policy: overwrite replaces the stored
// document, merge overlays doc on what is already stored. It returns the
// document that was written.
func Apply(s Store, doc mapping.Document, policy string) (mapping.Document, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", PolicyOverwrite:
	case PolicyMerge:
		doc = mapping.Merge(s.Load(), doc)
	default:
		return nil, fmt.Errorf("unsupported store policy %q (supported: %s, %s)", policy, PolicyOverwrite, PolicyMerge)
	}
	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func persistenceError(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrPersistence, fmt.Errorf(format, args...))
}
