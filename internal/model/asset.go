package model

import (
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// VendorAsset describes one remotely hosted file to fetch and persist
// locally: a source URL and the filename it is written under in the vendor
// directory. Assets are immutable once the manifest is built.
type VendorAsset struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	SHA256 string `yaml:"sha256,omitempty"` // optional integrity pin
}

// FetchTask represents the per-run state of fetching a single vendor asset
type FetchTask struct {
	ID           string
	URL          string
	Name         string     // destination filename within the vendor directory
	SHA256       string     // expected digest when the asset is pinned
	Status       TaskStatus
	BytesFetched int64
	BytesTotal   int64     // -1 if the server did not report a length
	LastError    string    // last error message if any
	OutputPath   string    // path to the written file
	StartedAt    time.Time // when the fetch started
	FinishedAt   time.Time // when the fetch finished
}

// BundleTask represents a single vendor-directory archiving task
type BundleTask struct {
	ID         string
	InputDir   string
	OutputPath string
	Status     TaskStatus
	Progress   float64 // 0.0 to 1.0
	Percent    int     // 0 to 100
	LastError  string  // last error message if any
	StartedAt  time.Time
	FinishedAt time.Time
}

// SizeString returns the fetched byte count in human readable form, or "—"
// when nothing has been transferred yet
func (ft *FetchTask) SizeString() string {
	if ft.BytesFetched <= 0 {
		return "—"
	}
	return humanize.Bytes(uint64(ft.BytesFetched))
}

// GetDisplayName returns the destination name, falling back to the last URL
// path segment and finally the URL itself
func (ft *FetchTask) GetDisplayName() string {
	if ft.Name != "" {
		return ft.Name
	}

	if ft.URL != "" {
		trimmed := strings.TrimRight(ft.URL, "/")
		if base := path.Base(trimmed); base != "." && base != "/" && !strings.Contains(base, ":") {
			return base
		}
		return ft.URL
	}

	return ""
}
