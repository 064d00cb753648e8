package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vendorget/vendorget/internal/config"
	"github.com/vendorget/vendorget/internal/lockfile"
)

// verifyCmd checks provisioned files against the lockfile
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify vendor files against vendor.lock.yml",
	Long: `Recomputes the digest of every file pinned in vendor.lock.yml and reports
each mismatch, then cross-checks the lockfile against any sha256 pins the
manifest declares. All entries are checked even when an early one fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lockPath := filepath.Join(targetDir, config.DefaultLockName)
		lock, err := lockfile.Read(lockPath)
		if err != nil {
			return err
		}

		manifest, err := loadManifest()
		if err != nil {
			return err
		}

		mismatches := lock.Verify(targetDir)
		mismatches = append(mismatches, lock.VerifyManifestPins(manifest)...)
		for _, mismatch := range mismatches {
			fmt.Printf("WARN %s: %s\n", mismatch.Name, mismatch.Reason)
		}

		if len(mismatches) > 0 {
			return fmt.Errorf("%d of %d files failed verification", len(mismatches), len(lock.Entries))
		}

		fmt.Printf("OK %d files verified\n", len(lock.Entries))
		return nil
	},
}
