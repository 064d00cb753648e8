package fetch

import (
	"context"

	"github.com/vendorget/vendorget/internal/model"
)

// Fetcher defines the interface for the vendor fetch service.
type Fetcher interface {
	SetUpdateCallback(func(*model.FetchTask))
	Run(ctx context.Context, manifest *model.Manifest) (*Summary, error)
	GetTask(id string) (*model.FetchTask, bool)
	GetAllTasks() []*model.FetchTask
}
