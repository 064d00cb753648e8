package bundle

import (
	"github.com/vendorget/vendorget/internal/model"
)

// Bundler defines the interface for the archive service.
type Bundler interface {
	SetUpdateCallback(func(*model.BundleTask))
	StartBundle(inputDir string) (*model.BundleTask, error)
	StopBundle(taskID string) error
	GetTask(taskID string) (*model.BundleTask, bool)
	WaitTask(taskID string)
}
