package lockfile

// Package lockfile records the digests of provisioned vendor assets so later
// runs can detect drift: a modified, truncated, or missing file in the
// vendor directory.

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vendorget/vendorget/internal/model"
	"github.com/vendorget/vendorget/internal/platform"
)

// Entry pins one provisioned file
type Entry struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	SHA256 string `yaml:"sha256"`
	Size   int64  `yaml:"size"`
}

// Lockfile is the serialized pin set for a vendor directory
type Lockfile struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	Entries     []Entry   `yaml:"entries"`
}

// Mismatch describes one file that no longer matches its pin
type Mismatch struct {
	Name   string
	Reason string
}

// HashFile returns the hex-encoded sha256 digest of the file at path
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// Generate builds a lockfile by hashing every manifest asset present in the
// vendor directory. Assets missing from disk are skipped: the lockfile pins
// what was actually provisioned.
func Generate(manifest *model.Manifest, vendorDir string) (*Lockfile, error) {
	lock := &Lockfile{GeneratedAt: time.Now()}

	for _, asset := range manifest.Assets {
		path := filepath.Join(vendorDir, asset.Name)
		if !platform.FileExists(path) {
			continue
		}

		digest, size, err := HashFile(path)
		if err != nil {
			return nil, err
		}
		lock.Entries = append(lock.Entries, Entry{
			Name:   asset.Name,
			URL:    asset.URL,
			SHA256: digest,
			Size:   size,
		})
	}

	sort.Slice(lock.Entries, func(i, j int) bool {
		return lock.Entries[i].Name < lock.Entries[j].Name
	})

	return lock, nil
}

// Write serializes the lockfile to path
func (l *Lockfile) Write(path string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to serialize lockfile: %w", err)
	}
	if err := os.WriteFile(path, data, platform.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write lockfile %s: %w", path, err)
	}
	return nil
}

// Read loads a lockfile from path
func Read(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile %s: %w", path, err)
	}

	lock := &Lockfile{}
	if err := yaml.Unmarshal(data, lock); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile %s: %w", path, err)
	}

	return lock, nil
}

// Verify checks every pinned file in the vendor directory against its
// recorded digest. All entries are checked; one bad file never hides the
// state of the rest.
func (l *Lockfile) Verify(vendorDir string) []Mismatch {
	var mismatches []Mismatch

	for _, entry := range l.Entries {
		path := filepath.Join(vendorDir, entry.Name)
		if !platform.FileExists(path) {
			mismatches = append(mismatches, Mismatch{Name: entry.Name, Reason: "missing"})
			continue
		}

		digest, size, err := HashFile(path)
		if err != nil {
			mismatches = append(mismatches, Mismatch{Name: entry.Name, Reason: err.Error()})
			continue
		}
		if size != entry.Size {
			mismatches = append(mismatches, Mismatch{
				Name:   entry.Name,
				Reason: fmt.Sprintf("size changed: expected %d bytes, found %d", entry.Size, size),
			})
			continue
		}
		if digest != entry.SHA256 {
			mismatches = append(mismatches, Mismatch{Name: entry.Name, Reason: "checksum mismatch"})
		}
	}

	return mismatches
}

// VerifyManifestPins cross-checks lockfile entries against the integrity
// pins declared in the manifest. A lockfile generated from tampered files
// records the tampered digests; the manifest pin is the authority.
func (l *Lockfile) VerifyManifestPins(manifest *model.Manifest) []Mismatch {
	var mismatches []Mismatch

	for _, entry := range l.Entries {
		asset, ok := manifest.GetAsset(entry.Name)
		if !ok || asset.SHA256 == "" {
			continue
		}
		if !strings.EqualFold(entry.SHA256, asset.SHA256) {
			mismatches = append(mismatches, Mismatch{
				Name:   entry.Name,
				Reason: fmt.Sprintf("does not match manifest pin %s", asset.SHA256),
			})
		}
	}

	return mismatches
}
