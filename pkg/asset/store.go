package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
)

// Store manages one asset file. The format follows the file extension.
type Store struct {
	mu       sync.Mutex
	path     string
	format   Format
	registry *model.Registry
	logger   log.Logger
}

// NewStore creates a store for the asset file at path. Unknown attributes
// found while loading are reported to logger, which may be nil.
func NewStore(path string, reg *model.Registry, logger log.Logger) (*Store, error) {
	f, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, format: f, registry: reg, logger: log.OrNoop(logger)}, nil
}

// Path returns the asset file path.
func (s *Store) Path() string {
	return s.path
}

// Format returns the file format.
func (s *Store) Format() Format {
	return s.format
}

// Save writes the asset to disk.
func (s *Store) Save(a *Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	a.Version = Version
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	data, err := Encode(a, s.format)
	if err != nil {
		s.event(log.OutcomeFailed, log.OpSave, a.Type, "", err)
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		s.event(log.OutcomeFailed, log.OpSave, a.Type, "", err)
		return err
	}
	s.event(log.OutcomeOK, log.OpSave, a.Type, "", nil)
	return nil
}

// Load reads the asset from disk.
// Returns nil, nil if the file doesn't exist.
func (s *Store) Load() (*Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a, unknown, err := Decode(data, s.format, s.registry)
	if err != nil {
		s.event(log.OutcomeFailed, log.OpLoad, "", "", err)
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	for _, name := range unknown {
		s.event(log.OutcomeSkipped, log.OpLoad, a.Type, name, ErrUnknownAttribute)
	}
	s.event(log.OutcomeOK, log.OpLoad, a.Type, "", nil)
	return a, nil
}

// Clear removes the asset file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) event(outcome log.Outcome, op log.Operation, typ, attribute string, err error) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		Operation: op,
		Outcome:   outcome,
		Type:      typ,
		Attribute: attribute,
		Detail:    s.path,
		Error:     log.ErrorString(err),
	})
}
