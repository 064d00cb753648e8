package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	// Create temporary directory for testing
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "vendor", "js")

	// Directory should not exist initially
	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	// Create directory (with missing parent)
	err := CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	// Directory should now exist
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	err = CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()

	if FileExists(filepath.Join(tempDir, "missing.js")) {
		t.Error("Expected FileExists to be false for a missing file")
	}

	if FileExists(tempDir) {
		t.Error("Expected FileExists to be false for a directory")
	}

	path := filepath.Join(tempDir, "a.js")
	if err := os.WriteFile(path, []byte("content"), DefaultFilePermissions); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if !FileExists(path) {
		t.Error("Expected FileExists to be true for a regular file")
	}
}

func TestDirSize(t *testing.T) {
	tempDir := t.TempDir()

	size, err := DirSize(tempDir)
	if err != nil {
		t.Fatalf("DirSize failed on empty dir: %v", err)
	}
	if size != 0 {
		t.Errorf("Expected size 0 for empty dir, got %d", size)
	}

	if err := os.WriteFile(filepath.Join(tempDir, "a.js"), []byte("12345"), DefaultFilePermissions); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	sub := filepath.Join(tempDir, "sub")
	if err := os.Mkdir(sub, DefaultDirPermissions); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.js"), []byte("123"), DefaultFilePermissions); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	size, err = DirSize(tempDir)
	if err != nil {
		t.Fatalf("DirSize failed: %v", err)
	}
	if size != 8 {
		t.Errorf("Expected size 8, got %d", size)
	}
}

func TestIsDirWritable(t *testing.T) {
	tempDir := t.TempDir()

	if !IsDirWritable(tempDir) {
		t.Error("Expected temp dir to be writable")
	}
}
