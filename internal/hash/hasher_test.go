package hash

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestFile_SmallFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	content := []byte("Hello, World!")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	got, err := File(testFile)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	h := xxhash.New()
	h.Write(content)
	if want := hex.EncodeToString(h.Sum(nil)); got != want {
		t.Errorf("Hash mismatch: expected %s, got %s", want, got)
	}
}

func TestFile_LargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "large.bin")

	// Larger than the copy buffer
	data := make([]byte, 1024*1024+17)
	for i := range data {
		data[i] = byte(i % 251)
	}
	if err := os.WriteFile(testFile, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	got, err := File(testFile)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	h := xxhash.New()
	h.Write(data)
	if want := hex.EncodeToString(h.Sum(nil)); got != want {
		t.Errorf("Hash mismatch: expected %s, got %s", want, got)
	}
}

func TestFile_NonExistent(t *testing.T) {
	if _, err := File("/nonexistent/file.txt"); err == nil {
		t.Error("File should return error for nonexistent file")
	}
}

func TestNode(t *testing.T) {
	first, err := Node([]byte("test data"))
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if len(first) != 8 {
		t.Errorf("Expected 8 bytes, got %d", len(first))
	}

	second, _ := Node([]byte("test data"))
	if hex.EncodeToString(first) != hex.EncodeToString(second) {
		t.Error("Node should be deterministic")
	}

	empty, err := Node([]byte{})
	if err != nil || len(empty) != 8 {
		t.Errorf("Expected 8 bytes for empty input, got %d (err=%v)", len(empty), err)
	}
}

func TestKey(t *testing.T) {
	if Key("/a/b") != Key("/a/b") {
		t.Error("Key should be deterministic")
	}
	if Key("/a/b") == Key("/a/c") {
		t.Error("Different inputs should produce different keys")
	}
}
