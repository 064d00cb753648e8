package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vendorget/vendorget/internal/model"
)

// Default values
const (
	DefaultVendorDir   = "vendor"
	DefaultMaxParallel = 1
	DefaultTimeout     = 30 * time.Second
	DefaultRetries     = 0
	DefaultLockName    = "vendor.lock.yml"

	MaxParallelLimit = 8
	MaxRetriesLimit  = 5
)

// Settings carries the effective configuration for a run. The asset list
// itself lives in the manifest; settings only describe how to fetch it.
type Settings struct {
	TargetDir   string
	MaxParallel int
	Timeout     time.Duration
	Retries     int
	LockPath    string
}

// NewSettings creates settings populated with defaults
func NewSettings() *Settings {
	return &Settings{
		TargetDir:   DefaultVendorDir,
		MaxParallel: DefaultMaxParallel,
		Timeout:     DefaultTimeout,
		Retries:     DefaultRetries,
		LockPath:    DefaultLockName,
	}
}

// SetMaxParallel sets the maximum number of parallel fetches
func (s *Settings) SetMaxParallel(count int) {
	if count < 1 {
		count = 1
	}
	if count > MaxParallelLimit {
		count = MaxParallelLimit
	}
	s.MaxParallel = count
}

// SetTimeout sets the per-request timeout
func (s *Settings) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s.Timeout = timeout
}

// SetRetries sets the number of additional attempts per asset
func (s *Settings) SetRetries(retries int) {
	if retries < 0 {
		retries = 0
	}
	if retries > MaxRetriesLimit {
		retries = MaxRetriesLimit
	}
	s.Retries = retries
}

// SetTargetDir sets the vendor directory
func (s *Settings) SetTargetDir(dir string) {
	if dir == "" {
		dir = DefaultVendorDir
	}
	s.TargetDir = dir
}

// DefaultManifest returns the built-in asset list: the vendor files a
// browser-only React site needs for offline development.
func DefaultManifest() *model.Manifest {
	m := model.NewManifest("vendor")
	m.AddAsset(&model.VendorAsset{
		Name: "react.development.js",
		URL:  "https://unpkg.com/react@18/umd/react.development.js",
	})
	m.AddAsset(&model.VendorAsset{
		Name: "react-dom.development.js",
		URL:  "https://unpkg.com/react-dom@18/umd/react-dom.development.js",
	})
	m.AddAsset(&model.VendorAsset{
		Name: "babel.min.js",
		URL:  "https://unpkg.com/@babel/standalone/babel.min.js",
	})
	m.AddAsset(&model.VendorAsset{
		Name: "tailwind.js",
		URL:  "https://cdn.tailwindcss.com/3.4.16",
	})
	return m
}

// LoadManifest reads a manifest from a YAML file and validates it. The file
// may set target_dir; callers decide whether a flag overrides it.
func LoadManifest(path string) (*model.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	manifest := model.NewManifest("vendor")
	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	return manifest, nil
}
