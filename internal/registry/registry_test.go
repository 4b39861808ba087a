package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")

	records := []Record{
		{X1: 10, Y1: 20, X2: 110, Y2: 80, Slot: 1, Score: 0.91},
		{X1: 120, Y1: 20, X2: 220, Y2: 80, Slot: 2, Score: 0.84},
		{X1: 230, Y1: 20, X2: 330, Y2: 80, Slot: 3, Score: 0.77},
	}
	if err := Save(path, records); err != nil {
		t.Fatalf("Save: %v", err)
	}

	slots, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("loaded %d slots, want 3", len(slots))
	}
	for i, s := range slots {
		if s.Index != i {
			t.Errorf("slot %d: Index = %d, want %d", i, s.Index, i)
		}
		if s.Number != i+1 {
			t.Errorf("slot %d: Number = %d, want %d", i, s.Number, i+1)
		}
	}
	if slots[1].Rect.X1 != 120 || slots[1].Rect.Y2 != 80 {
		t.Errorf("slot 1 rect = %+v, want {120 20 220 80}", slots[1].Rect)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("Load should fail for a missing registry")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestLoadEmptyRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail for an empty registry")
	}
}

func TestLoadMalformedRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail for malformed JSON")
	}
}

func TestLoadNumbersUnnumberedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")
	legacy := `[{"x1":0,"y1":0,"x2":10,"y2":10},{"x1":20,"y1":0,"x2":30,"y2":10}]`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	slots, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if slots[0].Number != 1 || slots[1].Number != 2 {
		t.Errorf("numbers = %d, %d, want 1, 2", slots[0].Number, slots[1].Number)
	}
}
