// Package artifact persists training outputs on the local filesystem:
// scaler.json, bank.json and active.json under one base directory. Writes go
// through a temp file and rename, so readers never observe a half-written
// artifact, and a store-wide mutex keeps a training run and a prediction from
// interleaving.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/regress"
)

const (
	scalerFile = "scaler.json"
	bankFile   = "bank.json"
	activeFile = "active.json"
)

type FSStore struct {
	basePath string
	mu       sync.RWMutex
}

func NewFSStore(basePath string) (*FSStore, error) {
	if basePath == "" {
		basePath = "./data/models"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FSStore{basePath: basePath}, nil
}

// SaveTrainingArtifacts replaces the scaler and the bank together. Both
// payloads are fully written to temp files before either rename, so a failed
// run leaves the previous pair in place.
func (s *FSStore) SaveTrainingArtifacts(_ context.Context, scaler *regress.StandardScaler, bank *regress.ModelBank) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scalerTmp, err := s.writeTemp(scalerFile, scaler)
	if err != nil {
		return err
	}
	bankTmp, err := s.writeTemp(bankFile, bank)
	if err != nil {
		_ = os.Remove(scalerTmp)
		return err
	}

	if err := os.Rename(scalerTmp, filepath.Join(s.basePath, scalerFile)); err != nil {
		_ = os.Remove(scalerTmp)
		_ = os.Remove(bankTmp)
		return fmt.Errorf("replace scaler artifact: %w", err)
	}
	if err := os.Rename(bankTmp, filepath.Join(s.basePath, bankFile)); err != nil {
		_ = os.Remove(bankTmp)
		return fmt.Errorf("replace bank artifact: %w", err)
	}
	return nil
}

func (s *FSStore) LoadBank(_ context.Context) (*regress.ModelBank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bank regress.ModelBank
	if err := s.readJSON(bankFile, &bank); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrModelNotFound, "load bank", errors.New("no training run persisted"))
		}
		return nil, err
	}
	return &bank, nil
}

func (s *FSStore) SaveActive(_ context.Context, active *regress.ActiveModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := s.writeTemp(activeFile, active)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(s.basePath, activeFile)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace active artifact: %w", err)
	}
	return nil
}

// LoadServing reads the active model and the scaler under one read lock, so a
// concurrent training run cannot hand back a model from one run and a scaler
// from another.
func (s *FSStore) LoadServing(_ context.Context) (*regress.ActiveModel, *regress.StandardScaler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active regress.ActiveModel
	if err := s.readJSON(activeFile, &active); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.WrapError(domain.ErrNoActiveModel, "load serving", errors.New("no model selected"))
		}
		return nil, nil, err
	}

	var scaler regress.StandardScaler
	if err := s.readJSON(scalerFile, &scaler); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.WrapError(domain.ErrNoActiveModel, "load serving", errors.New("no scaler persisted"))
		}
		return nil, nil, err
	}
	return &active, &scaler, nil
}

func (s *FSStore) writeTemp(name string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}

	f, err := os.CreateTemp(s.basePath, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp for %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write temp for %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close temp for %s: %w", name, err)
	}
	return f.Name(), nil
}

func (s *FSStore) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.basePath, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
