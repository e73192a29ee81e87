package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	domrepo "StockCast/internal/domain/repository"
)

func TestFileModelStoreRoundTrip(t *testing.T) {
	store := NewFileModelStore(t.TempDir())

	if store.Exists("NFLX") {
		t.Fatalf("exists before save")
	}
	if err := store.Save("NFLX", []byte(`{"weights":[1]}`), []byte(`{"min":1,"max":2}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !store.Exists("NFLX") {
		t.Fatalf("pair missing after save")
	}

	model, scaler, err := store.Load("NFLX")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(model) != `{"weights":[1]}` || string(scaler) != `{"min":1,"max":2}` {
		t.Fatalf("pair corrupted: %s / %s", model, scaler)
	}
}

func TestFileModelStoreNotFound(t *testing.T) {
	store := NewFileModelStore(t.TempDir())
	_, _, err := store.Load("NFLX")
	if !errors.Is(err, domrepo.ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestFileModelStoreIncompletePair(t *testing.T) {
	dir := t.TempDir()
	store := NewFileModelStore(dir)
	if err := store.Save("NFLX", []byte("m"), []byte("s")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "NFLX_scaler.json")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	_, _, err := store.Load("NFLX")
	var incomplete *domrepo.IncompletePersistenceError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompletePersistenceError, got %v", err)
	}
	if incomplete.Present != "model" || incomplete.Missing != "scaler" {
		t.Fatalf("unexpected detail %+v", incomplete)
	}
	if store.Exists("NFLX") {
		t.Fatalf("half a pair must not count as existing")
	}
}

func TestFileModelStoreDelete(t *testing.T) {
	store := NewFileModelStore(t.TempDir())
	if err := store.Save("NFLX", []byte("m"), []byte("s")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete("NFLX"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.Exists("NFLX") {
		t.Fatalf("pair survived delete")
	}
	// Deleting again is a no-op.
	if err := store.Delete("NFLX"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestFileModelStoreOverwrite(t *testing.T) {
	store := NewFileModelStore(t.TempDir())
	if err := store.Save("NFLX", []byte("v1"), []byte("s1")); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if err := store.Save("NFLX", []byte("v2"), []byte("s2")); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	model, scaler, err := store.Load("NFLX")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(model) != "v2" || string(scaler) != "s2" {
		t.Fatalf("stale pair returned: %s / %s", model, scaler)
	}
}
