package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vendorget/vendorget/internal/model"
	"github.com/vendorget/vendorget/internal/platform"
)

// Retry pacing for opt-in attempts
const (
	RetryDelay = 2 * time.Second

	TaskIDPrefix = "fetch-"
)

// Summary aggregates the outcome of a manifest run
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
}

// AllSucceeded reports whether every attempted asset was written
func (s *Summary) AllSucceeded() bool {
	return s.Failed == 0 && s.Attempted == s.Succeeded
}

// Service handles vendor fetch operations
type Service struct {
	tasks       map[string]*model.FetchTask
	order       []string // task IDs in manifest order
	tasksMutex  sync.RWMutex
	client      *http.Client
	targetDir   string
	maxParallel int
	retries     int
	logger      *zap.Logger
	onUpdate    func(*model.FetchTask) // callback for CLI reporting
}

// NewService creates a new fetch service writing into targetDir
func NewService(targetDir string, maxParallel int, timeout time.Duration) *Service {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Service{
		tasks:       make(map[string]*model.FetchTask),
		client:      &http.Client{Timeout: timeout},
		targetDir:   targetDir,
		maxParallel: maxParallel,
		logger:      zap.NewNop(),
	}
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.FetchTask)) {
	s.onUpdate = callback
}

// SetLogger sets the diagnostic logger
func (s *Service) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetRetries sets the number of additional attempts per asset
func (s *Service) SetRetries(retries int) {
	if retries < 0 {
		retries = 0
	}
	s.retries = retries
}

// GetTask returns a task by ID
func (s *Service) GetTask(id string) (*model.FetchTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	return task, exists
}

// GetAllTasks returns all tasks in manifest order
func (s *Service) GetAllTasks() []*model.FetchTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.FetchTask, 0, len(s.order))
	for _, id := range s.order {
		tasks = append(tasks, s.tasks[id])
	}
	return tasks
}

// Run fetches every asset in the manifest into the target directory. The
// directory is created before any transfer starts; failing to create it is
// the only error that aborts the run. Individual asset failures are recorded
// on their tasks and counted in the summary.
func (s *Service) Run(ctx context.Context, manifest *model.Manifest) (*Summary, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	if err := platform.CreateDirectoryIfNotExists(s.targetDir); err != nil {
		return nil, fmt.Errorf("failed to create target directory %s: %w", s.targetDir, err)
	}
	if !platform.IsDirWritable(s.targetDir) {
		return nil, fmt.Errorf("target directory %s is not writable", s.targetDir)
	}

	manifest.UpdateStatus(model.ManifestStatusFetching)

	tasks := make([]*model.FetchTask, 0, len(manifest.Assets))
	s.tasksMutex.Lock()
	for _, asset := range manifest.Assets {
		task := &model.FetchTask{
			ID:         generateTaskID(),
			URL:        asset.URL,
			Name:       asset.Name,
			SHA256:     asset.SHA256,
			Status:     model.TaskStatusPending,
			BytesTotal: -1,
		}
		s.tasks[task.ID] = task
		s.order = append(s.order, task.ID)
		tasks = append(tasks, task)
	}
	s.tasksMutex.Unlock()

	if s.maxParallel <= 1 {
		// Strict manifest order: a task only starts once the previous
		// one has finished, success or failure.
		for _, task := range tasks {
			s.fetchTask(ctx, task)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.maxParallel)
		for _, task := range tasks {
			task := task
			g.Go(func() error {
				// Failures stay on the task so one asset cannot
				// cancel the others through the group.
				s.fetchTask(gctx, task)
				return nil
			})
		}
		_ = g.Wait()
	}

	summary := &Summary{Attempted: len(tasks)}
	for _, task := range tasks {
		s.tasksMutex.RLock()
		status := task.Status
		s.tasksMutex.RUnlock()
		if status == model.TaskStatusCompleted {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	manifest.Fetched = summary.Succeeded
	if summary.AllSucceeded() {
		manifest.UpdateStatus(model.ManifestStatusCompleted)
	} else {
		manifest.UpdateStatus(model.ManifestStatusError)
	}

	return summary, nil
}

// fetchTask performs one asset fetch and records the outcome on the task
func (s *Service) fetchTask(ctx context.Context, task *model.FetchTask) {
	s.tasksMutex.Lock()
	task.Status = model.TaskStatusStarting
	task.StartedAt = time.Now()
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	s.tasksMutex.Lock()
	task.Status = model.TaskStatusFetching
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	err := s.fetchWithRetry(ctx, task)

	s.tasksMutex.Lock()
	if err != nil {
		if ctx.Err() == context.Canceled {
			task.Status = model.TaskStatusStopped
		} else {
			task.Status = model.TaskStatusError
		}
		task.LastError = err.Error()
	} else {
		task.Status = model.TaskStatusCompleted
		task.OutputPath = filepath.Join(s.targetDir, task.Name)
	}
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// fetchWithRetry runs the transfer, re-attempting when retries are configured
func (s *Service) fetchWithRetry(ctx context.Context, task *model.FetchTask) error {
	if s.retries <= 0 {
		return s.doFetch(ctx, task)
	}

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return s.doFetch(ctx, task)
		},
		Attempts: s.retries + 1,
		Delay:    RetryDelay,
		Clock:    clock.WallClock,
		Stop:     ctx.Done(),
		NotifyFunc: func(lastError error, attempt int) {
			s.logger.Debug("fetch attempt failed",
				zap.String("url", task.URL),
				zap.Int("attempt", attempt),
				zap.Error(lastError))
		},
	})
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
		err = retry.LastError(err)
	}
	return err
}

// doFetch performs a single transfer attempt: GET the source and stream the
// body into <targetDir>/<name>, overwriting any previous copy.
func (s *Service) doFetch(ctx context.Context, task *model.FetchTask) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return fmt.Errorf("invalid source %s: %w", task.URL, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("retrieval of %s failed: %w", task.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("retrieval of %s failed: unexpected status %s", task.URL, resp.Status)
	}

	s.tasksMutex.Lock()
	task.BytesTotal = resp.ContentLength
	task.BytesFetched = 0
	s.tasksMutex.Unlock()

	outputPath := filepath.Join(s.targetDir, task.Name)
	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("write of %s failed: %w", outputPath, err)
	}

	hasher := sha256.New()
	written, err := io.Copy(output, io.TeeReader(resp.Body, io.MultiWriter(&progressWriter{service: s, task: task}, hasher)))
	if closeErr := output.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write of %s failed: %w", outputPath, err)
	}

	if task.SHA256 != "" {
		digest := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(digest, task.SHA256) {
			// A file that fails its pin must not survive to be locked or served
			os.Remove(outputPath)
			return fmt.Errorf("integrity check of %s failed: sha256 mismatch (expected %s, got %s)",
				task.URL, task.SHA256, digest)
		}
	}

	s.logger.Debug("asset fetched",
		zap.String("url", task.URL),
		zap.String("path", outputPath),
		zap.Int64("bytes", written))

	return nil
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.FetchTask) {
	if s.onUpdate != nil {
		s.onUpdate(task)
	}
}

// progressWriter accumulates transferred byte counts onto the task
type progressWriter struct {
	service *Service
	task    *model.FetchTask
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.service.tasksMutex.Lock()
	w.task.BytesFetched += int64(len(p))
	w.service.tasksMutex.Unlock()
	return len(p), nil
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
