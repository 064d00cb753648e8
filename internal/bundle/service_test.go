package bundle

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/vendorget/vendorget/internal/model"
)

func TestStartBundle_MissingDirectory(t *testing.T) {
	service := NewService()

	if _, err := service.StartBundle(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing input directory")
	}
}

func TestStartBundle_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.js")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	service := NewService()
	if _, err := service.StartBundle(path); err == nil {
		t.Error("Expected error for non-directory input")
	}
}

func TestBundle_ArchivesVendorDir(t *testing.T) {
	base := t.TempDir()
	vendorDir := filepath.Join(base, "vendor")
	if err := os.Mkdir(vendorDir, 0o755); err != nil {
		t.Fatalf("Failed to create vendor dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(vendorDir, "a.js"), []byte("alpha"), 0o644); err != nil {
		t.Fatalf("Failed to write a.js: %v", err)
	}
	if err := os.WriteFile(filepath.Join(vendorDir, "b.js"), []byte("beta"), 0o644); err != nil {
		t.Fatalf("Failed to write b.js: %v", err)
	}

	service := NewService()
	task, err := service.StartBundle(vendorDir)
	if err != nil {
		t.Fatalf("StartBundle failed: %v", err)
	}
	service.WaitTask(task.ID)

	if task.Status != model.TaskStatusCompleted {
		t.Fatalf("Expected task to complete, got %s (%s)", task.Status, task.LastError)
	}
	if task.Percent != 100 {
		t.Errorf("Expected 100%% progress, got %d", task.Percent)
	}

	expectedPath := vendorDir + BundleSuffix + OutputExtensionZip
	if task.OutputPath != expectedPath {
		t.Errorf("Expected output path %s, got %s", expectedPath, task.OutputPath)
	}

	reader, err := zip.OpenReader(task.OutputPath)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer reader.Close()

	names := make(map[string]bool)
	for _, file := range reader.File {
		names[file.Name] = true
	}
	if !names["a.js"] || !names["b.js"] {
		t.Errorf("Expected archive to contain a.js and b.js, got %v", names)
	}
}

func TestBundle_EmptyDirectory(t *testing.T) {
	base := t.TempDir()
	vendorDir := filepath.Join(base, "vendor")
	if err := os.Mkdir(vendorDir, 0o755); err != nil {
		t.Fatalf("Failed to create vendor dir: %v", err)
	}

	service := NewService()
	task, err := service.StartBundle(vendorDir)
	if err != nil {
		t.Fatalf("StartBundle failed: %v", err)
	}
	service.WaitTask(task.ID)

	if task.Status != model.TaskStatusError {
		t.Fatalf("Expected error status for empty directory, got %s", task.Status)
	}

	if _, err := os.Stat(task.OutputPath); !os.IsNotExist(err) {
		t.Error("Expected no archive to be left behind")
	}
}

func TestBundle_StopRemovesPartialArchive(t *testing.T) {
	base := t.TempDir()
	vendorDir := filepath.Join(base, "vendor")
	if err := os.Mkdir(vendorDir, 0o755); err != nil {
		t.Fatalf("Failed to create vendor dir: %v", err)
	}
	for _, name := range []string{"a.js", "b.js", "c.js"} {
		if err := os.WriteFile(filepath.Join(vendorDir, name), []byte("content"), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	service := NewService()

	// Request a stop as soon as the first file has been archived; the loop
	// observes Stopping before the next file.
	stopped := false
	service.SetUpdateCallback(func(task *model.BundleTask) {
		if task.Status == model.TaskStatusFetching && task.Percent > 0 && !stopped {
			stopped = true
			if err := service.StopBundle(task.ID); err != nil {
				t.Errorf("StopBundle failed: %v", err)
			}
		}
	})

	task, err := service.StartBundle(vendorDir)
	if err != nil {
		t.Fatalf("StartBundle failed: %v", err)
	}
	service.WaitTask(task.ID)

	if task.Status != model.TaskStatusStopped {
		t.Fatalf("Expected task to be stopped, got %s", task.Status)
	}

	if _, err := os.Stat(task.OutputPath); !os.IsNotExist(err) {
		t.Error("Expected partial archive to be removed")
	}
}

func TestStopBundle_FinishedTask(t *testing.T) {
	base := t.TempDir()
	vendorDir := filepath.Join(base, "vendor")
	if err := os.Mkdir(vendorDir, 0o755); err != nil {
		t.Fatalf("Failed to create vendor dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(vendorDir, "a.js"), []byte("alpha"), 0o644); err != nil {
		t.Fatalf("Failed to write a.js: %v", err)
	}

	service := NewService()
	task, err := service.StartBundle(vendorDir)
	if err != nil {
		t.Fatalf("StartBundle failed: %v", err)
	}
	service.WaitTask(task.ID)

	if err := service.StopBundle(task.ID); err == nil {
		t.Error("Expected StopBundle on a finished task to fail")
	}
	if err := service.StopBundle("bundle-unknown"); err == nil {
		t.Error("Expected StopBundle on an unknown task to fail")
	}
}

func TestBundle_UpdateCallback(t *testing.T) {
	base := t.TempDir()
	vendorDir := filepath.Join(base, "vendor")
	if err := os.Mkdir(vendorDir, 0o755); err != nil {
		t.Fatalf("Failed to create vendor dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(vendorDir, "a.js"), []byte("alpha"), 0o644); err != nil {
		t.Fatalf("Failed to write a.js: %v", err)
	}

	service := NewService()

	var last model.TaskStatus
	service.SetUpdateCallback(func(task *model.BundleTask) {
		last = task.Status
	})

	task, err := service.StartBundle(vendorDir)
	if err != nil {
		t.Fatalf("StartBundle failed: %v", err)
	}
	service.WaitTask(task.ID)

	if last != model.TaskStatusCompleted {
		t.Errorf("Expected final callback with Completed, got %s", last)
	}

	got, exists := service.GetTask(task.ID)
	if !exists {
		t.Fatal("Expected task to be tracked")
	}
	if got.ID != task.ID {
		t.Errorf("Expected task ID %s, got %s", task.ID, got.ID)
	}
}
