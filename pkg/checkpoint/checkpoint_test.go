package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"jiraminer/pkg/logger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	mgr, err := NewManager(filepath.Join(t.TempDir(), "checkpoints"), logger.NewTestLogger())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return mgr
}

func TestManager(t *testing.T) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		mgr := newTestManager(t)

		cp := &Checkpoint{
			ProjectKey:   "KAFKA",
			LastOffset:   150,
			TotalFetched: 150,
			TotalKnown:   12000,
		}
		if err := mgr.Save(cp); err != nil {
			t.Fatalf("Failed to save checkpoint: %v", err)
		}

		loaded, err := mgr.Load("KAFKA")
		if err != nil {
			t.Fatalf("Failed to load checkpoint: %v", err)
		}
		if loaded == nil {
			t.Fatal("Expected checkpoint, got nil")
		}
		if loaded.ProjectKey != "KAFKA" {
			t.Errorf("Expected project KAFKA, got %s", loaded.ProjectKey)
		}
		if loaded.LastOffset != 150 {
			t.Errorf("Expected last offset 150, got %d", loaded.LastOffset)
		}
		if loaded.TotalFetched != 150 {
			t.Errorf("Expected total fetched 150, got %d", loaded.TotalFetched)
		}
		if loaded.TotalKnown != 12000 {
			t.Errorf("Expected total known 12000, got %d", loaded.TotalKnown)
		}
		if loaded.UpdatedAt.IsZero() {
			t.Error("Expected updated at to be stamped on save")
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		mgr := newTestManager(t)

		loaded, err := mgr.Load("SPARK")
		if err != nil {
			t.Fatalf("Load of missing checkpoint should not error: %v", err)
		}
		if loaded != nil {
			t.Errorf("Expected nil checkpoint, got %+v", loaded)
		}
	})

	t.Run("IdempotentOverwrite", func(t *testing.T) {
		mgr := newTestManager(t)

		cp := &Checkpoint{ProjectKey: "KAFKA", LastOffset: 100, TotalFetched: 100, TotalKnown: 500}
		if err := mgr.Save(cp); err != nil {
			t.Fatalf("First save failed: %v", err)
		}
		first, _ := mgr.Load("KAFKA")

		if err := mgr.Save(cp); err != nil {
			t.Fatalf("Second save failed: %v", err)
		}
		second, _ := mgr.Load("KAFKA")

		if first.LastOffset != second.LastOffset ||
			first.TotalFetched != second.TotalFetched ||
			first.TotalKnown != second.TotalKnown {
			t.Errorf("Repeated save changed the loaded value: %+v vs %+v", first, second)
		}
	})

	t.Run("CorruptFileIsColdStart", func(t *testing.T) {
		mgr := newTestManager(t)

		if err := os.WriteFile(mgr.Path("KAFKA"), []byte("{not json"), 0644); err != nil {
			t.Fatalf("Failed to write corrupt file: %v", err)
		}

		loaded, err := mgr.Load("KAFKA")
		if err != nil {
			t.Fatalf("Corrupt checkpoint should not be fatal: %v", err)
		}
		if loaded != nil {
			t.Errorf("Expected nil for corrupt checkpoint, got %+v", loaded)
		}
		if got := mgr.LastOffset("KAFKA"); got != 0 {
			t.Errorf("Expected offset 0 for corrupt checkpoint, got %d", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		mgr := newTestManager(t)

		cp := &Checkpoint{ProjectKey: "KAFKA", LastOffset: 10, TotalFetched: 10, TotalKnown: 50}
		if err := mgr.Save(cp); err != nil {
			t.Fatalf("Failed to save checkpoint: %v", err)
		}

		if err := mgr.Delete("KAFKA"); err != nil {
			t.Fatalf("Failed to delete checkpoint: %v", err)
		}
		if mgr.Exists("KAFKA") {
			t.Error("Checkpoint file should be gone after delete")
		}

		// Deleting again is a no-op, not an error.
		if err := mgr.Delete("KAFKA"); err != nil {
			t.Errorf("Delete of missing checkpoint should not error: %v", err)
		}
	})

	t.Run("LastOffset", func(t *testing.T) {
		mgr := newTestManager(t)

		if got := mgr.LastOffset("KAFKA"); got != 0 {
			t.Errorf("Expected 0 for missing checkpoint, got %d", got)
		}

		cp := &Checkpoint{ProjectKey: "KAFKA", LastOffset: 300, TotalFetched: 300, TotalKnown: 900}
		if err := mgr.Save(cp); err != nil {
			t.Fatalf("Failed to save checkpoint: %v", err)
		}

		if got := mgr.LastOffset("KAFKA"); got != 300 {
			t.Errorf("Expected 300, got %d", got)
		}
	})

	t.Run("SeparateProjects", func(t *testing.T) {
		mgr := newTestManager(t)

		if err := mgr.Save(&Checkpoint{ProjectKey: "KAFKA", LastOffset: 1, TotalFetched: 1}); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
		if err := mgr.Save(&Checkpoint{ProjectKey: "SPARK", LastOffset: 2, TotalFetched: 2}); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		if got := mgr.LastOffset("KAFKA"); got != 1 {
			t.Errorf("Expected KAFKA offset 1, got %d", got)
		}
		if got := mgr.LastOffset("SPARK"); got != 2 {
			t.Errorf("Expected SPARK offset 2, got %d", got)
		}
	})
}
