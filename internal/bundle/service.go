package bundle

// Package bundle archives a provisioned vendor directory into a single zip
// for copying to an offline machine. Task-based: states, per-file progress,
// and partial archives removed on error or cancellation.

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vendorget/vendorget/internal/model"
)

const (
	BundleSuffix       = "-bundle"
	OutputExtensionZip = ".zip"
	TaskIDPrefix       = "bundle-"
)

// Service handles vendor directory archiving
type Service struct {
	tasks      map[string]*model.BundleTask
	done       map[string]chan struct{}
	tasksMutex sync.RWMutex
	onUpdate   func(*model.BundleTask) // callback for CLI reporting
}

// NewService creates a new bundle service
func NewService() *Service {
	return &Service{
		tasks: make(map[string]*model.BundleTask),
		done:  make(map[string]chan struct{}),
	}
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.BundleTask)) {
	s.onUpdate = callback
}

// StartBundle starts archiving a vendor directory
func (s *Service) StartBundle(inputDir string) (*model.BundleTask, error) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	// Check if a bundle is already in progress for this directory
	for _, task := range s.tasks {
		if task.InputDir == inputDir && task.Status.IsActive() {
			return nil, fmt.Errorf("bundle already in progress for directory: %s", inputDir)
		}
	}

	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory does not exist: %s", inputDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", inputDir)
	}

	task := &model.BundleTask{
		ID:         generateTaskID(),
		InputDir:   inputDir,
		OutputPath: generateOutputPath(inputDir),
		Status:     model.TaskStatusPending,
		StartedAt:  time.Now(),
	}

	s.tasks[task.ID] = task
	s.done[task.ID] = make(chan struct{})

	// Archive in background
	go s.startBundle(task)

	return task, nil
}

// StopBundle stops a running bundle task
func (s *Service) StopBundle(taskID string) error {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return fmt.Errorf("bundle task not found: %s", taskID)
	}

	if !task.Status.IsActive() {
		return fmt.Errorf("bundle task is not active: %s", task.Status)
	}

	task.Status = model.TaskStatusStopping
	s.notifyUpdate(task)

	return nil
}

// GetTask returns a bundle task by ID
func (s *Service) GetTask(taskID string) (*model.BundleTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[taskID]
	return task, exists
}

// WaitTask blocks until the task has reached a finished state
func (s *Service) WaitTask(taskID string) {
	s.tasksMutex.RLock()
	done, exists := s.done[taskID]
	s.tasksMutex.RUnlock()
	if exists {
		<-done
	}
}

// startBundle performs the actual archiving
func (s *Service) startBundle(task *model.BundleTask) {
	defer func() {
		s.tasksMutex.Lock()
		done := s.done[task.ID]
		s.tasksMutex.Unlock()
		close(done)
	}()

	s.tasksMutex.Lock()
	task.Status = model.TaskStatusStarting
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	files, err := s.collectFiles(task.InputDir)
	if err != nil {
		s.setTaskError(task, err)
		return
	}
	if len(files) == 0 {
		s.setTaskError(task, fmt.Errorf("nothing to bundle: %s is empty", task.InputDir))
		return
	}

	s.tasksMutex.Lock()
	task.Status = model.TaskStatusFetching
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	output, err := os.Create(task.OutputPath)
	if err != nil {
		s.setTaskError(task, fmt.Errorf("failed to create archive: %w", err))
		return
	}

	writer := zip.NewWriter(output)
	stopped := false

	for i, file := range files {
		s.tasksMutex.RLock()
		status := task.Status
		s.tasksMutex.RUnlock()
		if status == model.TaskStatusStopping {
			stopped = true
			break
		}

		if err = s.addFile(writer, task.InputDir, file); err != nil {
			break
		}

		progress := float64(i+1) / float64(len(files))
		s.tasksMutex.Lock()
		task.Progress = progress
		task.Percent = int(progress * 100)
		s.tasksMutex.Unlock()
		s.notifyUpdate(task)
	}

	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	if closeErr := output.Close(); err == nil {
		err = closeErr
	}

	s.tasksMutex.Lock()
	if stopped {
		task.Status = model.TaskStatusStopped
		// Remove partial archive
		os.Remove(task.OutputPath)
	} else if err != nil {
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
		// Remove partial archive
		os.Remove(task.OutputPath)
	} else {
		task.Status = model.TaskStatusCompleted
		task.Progress = 1.0
		task.Percent = 100
	}
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// collectFiles lists regular files below dir, paths relative to dir
func (s *Service) collectFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	return files, nil
}

// addFile writes one file into the archive under its relative path
func (s *Service) addFile(writer *zip.Writer, dir, rel string) error {
	input, err := os.Open(filepath.Join(dir, rel))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer input.Close()

	entry, err := writer.Create(filepath.ToSlash(rel))
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", rel, err)
	}

	if _, err := io.Copy(entry, input); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", rel, err)
	}

	return nil
}

// setTaskError sets an error state for a task
func (s *Service) setTaskError(task *model.BundleTask, err error) {
	s.tasksMutex.Lock()
	task.Status = model.TaskStatusError
	task.LastError = err.Error()
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.BundleTask) {
	if s.onUpdate != nil {
		s.onUpdate(task)
	}
}

// generateOutputPath generates the archive path for a vendor directory
func generateOutputPath(inputDir string) string {
	trimmed := filepath.Clean(inputDir)
	return trimmed + BundleSuffix + OutputExtensionZip
}

// generateTaskID generates a unique task ID using UUID v7 for better uniqueness and time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
