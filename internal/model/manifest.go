package model

import (
	"fmt"
	"strings"
	"time"
)

// ManifestStatus represents the current status of a manifest run
type ManifestStatus string

const (
	ManifestStatusReady     ManifestStatus = "ready"
	ManifestStatusFetching  ManifestStatus = "fetching"
	ManifestStatusCompleted ManifestStatus = "completed"
	ManifestStatusError     ManifestStatus = "error"
)

// Manifest is an ordered collection of vendor assets sharing one target
// directory. Order is significant: assets are fetched in manifest order.
type Manifest struct {
	Name      string         `yaml:"name"`
	TargetDir string         `yaml:"target_dir,omitempty"`
	Assets    []*VendorAsset `yaml:"assets"`
	Status    ManifestStatus `yaml:"-"`
	Fetched   int            `yaml:"-"`
	CreatedAt time.Time      `yaml:"-"`
	UpdatedAt time.Time      `yaml:"-"`
}

// NewManifest creates an empty manifest
func NewManifest(name string) *Manifest {
	now := time.Now()
	return &Manifest{
		Name:      name,
		Status:    ManifestStatusReady,
		Assets:    make([]*VendorAsset, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddAsset appends an asset to the manifest
func (m *Manifest) AddAsset(asset *VendorAsset) {
	m.Assets = append(m.Assets, asset)
	m.UpdatedAt = time.Now()
}

// GetAsset returns the asset with the given destination name
func (m *Manifest) GetAsset(name string) (*VendorAsset, bool) {
	for _, asset := range m.Assets {
		if asset.Name == name {
			return asset, true
		}
	}
	return nil, false
}

// UpdateStatus updates the manifest status
func (m *Manifest) UpdateStatus(status ManifestStatus) {
	m.Status = status
	m.UpdatedAt = time.Now()
}

// Validate checks that every asset has a source URL and a destination name,
// and that destination names are pairwise distinct. Two assets writing the
// same filename would silently clobber each other.
func (m *Manifest) Validate() error {
	if len(m.Assets) == 0 {
		return fmt.Errorf("manifest %q has no assets", m.Name)
	}

	seen := make(map[string]string, len(m.Assets))
	for i, asset := range m.Assets {
		if asset.URL == "" {
			return fmt.Errorf("asset %d has no source URL", i)
		}
		if asset.Name == "" {
			return fmt.Errorf("asset %d (%s) has no destination name", i, asset.URL)
		}
		if strings.ContainsAny(asset.Name, `/\`) {
			return fmt.Errorf("asset %q: destination name must not contain path separators", asset.Name)
		}
		if prev, dup := seen[asset.Name]; dup {
			return fmt.Errorf("duplicate destination name %q (%s and %s)", asset.Name, prev, asset.URL)
		}
		seen[asset.Name] = asset.URL
	}

	return nil
}

// Progress returns overall fetch progress as a percentage
func (m *Manifest) Progress() float64 {
	if len(m.Assets) == 0 {
		return 0
	}
	return float64(m.Fetched) / float64(len(m.Assets)) * 100
}
