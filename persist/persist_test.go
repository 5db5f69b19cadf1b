package persist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Nebual/ncscreenier/imaging"
)

func TestNewName(t *testing.T) {
	at := time.Date(2019, 4, 7, 18, 32, 11, 0, time.UTC)
	if got := NewName("png", at); got != "2019_04_07_18-32-11.png" {
		t.Errorf("NewName = %q", got)
	}
}

func TestSaveWritesFile(t *testing.T) {
	dir := t.TempDir()
	enc := imaging.Encoded{Bytes: []byte("not really a png"), Format: "png"}

	path, err := Save(enc, dir, "shot.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != "not really a png" {
		t.Errorf("saved bytes differ from encoded bytes")
	}
}

func TestSaveResolvesCollisions(t *testing.T) {
	dir := t.TempDir()
	enc := imaging.Encoded{Bytes: []byte("x"), Format: "png"}

	first, err := Save(enc, dir, "shot.png")
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	second, err := Save(enc, dir, "shot.png")
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	third, err := Save(enc, dir, "shot.png")
	if err != nil {
		t.Fatalf("third Save: %v", err)
	}

	if filepath.Base(first) != "shot.png" {
		t.Errorf("first = %q, want shot.png", first)
	}
	if filepath.Base(second) != "shot_2.png" {
		t.Errorf("second = %q, want shot_2.png", second)
	}
	if filepath.Base(third) != "shot_3.png" {
		t.Errorf("third = %q, want shot_3.png", third)
	}

	// The original must be untouched.
	data, _ := os.ReadFile(first)
	if string(data) != "x" {
		t.Error("collision handling clobbered the original file")
	}
}

func TestSaveRejectsEmptyPayload(t *testing.T) {
	if _, err := Save(imaging.Encoded{}, t.TempDir(), "shot.png"); err == nil {
		t.Error("expected error for empty encoded image")
	}
}

func TestSaveMissingDirectory(t *testing.T) {
	enc := imaging.Encoded{Bytes: []byte("x"), Format: "png"}
	if _, err := Save(enc, filepath.Join(t.TempDir(), "does", "not", "exist"), "shot.png"); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
