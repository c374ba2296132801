// Package store persists index snapshots between sessions.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/amosWeiskopf/indexsmith/internal/config"
	"github.com/amosWeiskopf/indexsmith/internal/models"
)

// ErrNotFound is returned by Load when nothing has been saved yet
var ErrNotFound = errors.New("no saved index")

// Store saves and loads a single index snapshot
type Store interface {
	Save(snap *models.Snapshot) error
	Load() (*models.Snapshot, error)
	// Location describes where snapshots go, for messages
	Location() string
	Close() error
}

// Open opens the store described by cfg
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case config.StorageJSON:
		return NewJSONStore(cfg.Path), nil
	case config.StorageBolt:
		return openBolt(cfg.Path)
	case config.StorageNone, "":
		return noopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// OpenPath opens a store for an explicit file, picking bolt for .db and
// .bolt files and JSON otherwise.
func OpenPath(path string) (Store, error) {
	if path == "" {
		return nil, errors.New("empty store path")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".bolt":
		return openBolt(path)
	default:
		return NewJSONStore(path), nil
	}
}

func openBolt(path string) (Store, error) {
	s, err := OpenBolt(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type noopStore struct{}

func (noopStore) Save(*models.Snapshot) error     { return nil }
func (noopStore) Load() (*models.Snapshot, error) { return nil, ErrNotFound }
func (noopStore) Location() string                { return "nowhere (storage disabled)" }
func (noopStore) Close() error                    { return nil }
