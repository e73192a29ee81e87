package repository

import (
	"fmt"
	"os"
	"path/filepath"

	domrepo "StockCast/internal/domain/repository"
)

// FileModelStore persists the fitted model and its scaler as sibling JSON
// files under one directory, treated strictly as a unit: Save stages both
// halves to temp files and renames them into place, Load refuses a pair with
// only one half present.
type FileModelStore struct {
	dir string
}

// NewFileModelStore creates a file-backed model store rooted at dir.
func NewFileModelStore(dir string) *FileModelStore {
	return &FileModelStore{dir: dir}
}

func (s *FileModelStore) modelPath(symbol string) string {
	return filepath.Join(s.dir, symbol+"_model.json")
}

func (s *FileModelStore) scalerPath(symbol string) string {
	return filepath.Join(s.dir, symbol+"_scaler.json")
}

// Save writes both halves or neither.
func (s *FileModelStore) Save(symbol string, model, scaler []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("model dir: %w", err)
	}

	modelTmp := s.modelPath(symbol) + ".tmp"
	scalerTmp := s.scalerPath(symbol) + ".tmp"

	if err := os.WriteFile(modelTmp, model, 0o644); err != nil {
		return fmt.Errorf("stage model: %w", err)
	}
	if err := os.WriteFile(scalerTmp, scaler, 0o644); err != nil {
		_ = os.Remove(modelTmp)
		return fmt.Errorf("stage scaler: %w", err)
	}

	if err := os.Rename(modelTmp, s.modelPath(symbol)); err != nil {
		_ = os.Remove(modelTmp)
		_ = os.Remove(scalerTmp)
		return fmt.Errorf("commit model: %w", err)
	}
	if err := os.Rename(scalerTmp, s.scalerPath(symbol)); err != nil {
		// Roll back the committed model half so the pair stays consistent.
		_ = os.Remove(s.modelPath(symbol))
		_ = os.Remove(scalerTmp)
		return fmt.Errorf("commit scaler: %w", err)
	}
	return nil
}

// Load reads both halves. Neither present yields ErrModelNotFound; exactly
// one present yields IncompletePersistenceError.
func (s *FileModelStore) Load(symbol string) (model, scaler []byte, err error) {
	model, modelErr := os.ReadFile(s.modelPath(symbol))
	scaler, scalerErr := os.ReadFile(s.scalerPath(symbol))

	switch {
	case modelErr == nil && scalerErr == nil:
		return model, scaler, nil
	case os.IsNotExist(modelErr) && os.IsNotExist(scalerErr):
		return nil, nil, domrepo.ErrModelNotFound
	case modelErr == nil && os.IsNotExist(scalerErr):
		return nil, nil, &domrepo.IncompletePersistenceError{Present: "model", Missing: "scaler"}
	case os.IsNotExist(modelErr) && scalerErr == nil:
		return nil, nil, &domrepo.IncompletePersistenceError{Present: "scaler", Missing: "model"}
	case modelErr != nil:
		return nil, nil, fmt.Errorf("read model: %w", modelErr)
	default:
		return nil, nil, fmt.Errorf("read scaler: %w", scalerErr)
	}
}

// Delete removes both halves; missing files are not an error.
func (s *FileModelStore) Delete(symbol string) error {
	if err := os.Remove(s.modelPath(symbol)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove model: %w", err)
	}
	if err := os.Remove(s.scalerPath(symbol)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove scaler: %w", err)
	}
	return nil
}

// Exists reports whether a complete pair is on disk.
func (s *FileModelStore) Exists(symbol string) bool {
	if _, err := os.Stat(s.modelPath(symbol)); err != nil {
		return false
	}
	if _, err := os.Stat(s.scalerPath(symbol)); err != nil {
		return false
	}
	return true
}

var _ domrepo.ModelStore = (*FileModelStore)(nil)
