package uploader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"image.png", true},
		{"anim.webp", true},
		{"scan.tiff", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		if got := IsImageFile(tt.path); got != tt.want {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestComputeFileHashDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(path, []byte("same bytes"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	first, err := ComputeFileHash(path)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}

	second, err := ComputeFileHash(path)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first != second {
		t.Fatal("identical bytes produced different hashes")
	}

	other := filepath.Join(dir, "b.jpg")
	if err := os.WriteFile(other, []byte("other bytes"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	different, err := ComputeFileHash(other)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == different {
		t.Fatal("different bytes produced the same hash")
	}
}

func TestValidateImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if err := ValidateImageFile(path); err != nil {
		t.Errorf("valid image rejected: %v", err)
	}
	if err := ValidateImageFile(filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("missing file accepted")
	}
	if err := ValidateImageFile(dir); err == nil {
		t.Error("directory accepted")
	}

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := ValidateImageFile(txt); err == nil {
		t.Error("non-image extension accepted")
	}
}
