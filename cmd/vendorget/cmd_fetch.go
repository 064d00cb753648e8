package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vendorget/vendorget/internal/config"
	"github.com/vendorget/vendorget/internal/fetch"
	"github.com/vendorget/vendorget/internal/lockfile"
	"github.com/vendorget/vendorget/internal/model"
)

// fetchCmd populates the vendor directory
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch all manifest assets into the vendor directory",
	Long: `Fetches every asset in the manifest into the vendor directory, creating
the directory if needed. A failed asset is reported and skipped; the rest of
the batch still runs. The command exits non-zero when any asset failed.`,
	RunE: runFetch,
}

// effectiveSettings builds run settings from flags, with clamping
func effectiveSettings(cmd *cobra.Command, manifest *model.Manifest) *config.Settings {
	settings := config.NewSettings()
	settings.SetMaxParallel(maxParallel)
	settings.SetTimeout(timeout)
	settings.SetRetries(retries)

	// A manifest may carry its own target directory; an explicit --dir wins
	if manifest.TargetDir != "" && !cmd.Flags().Changed("dir") {
		settings.SetTargetDir(manifest.TargetDir)
	} else {
		settings.SetTargetDir(targetDir)
	}

	return settings
}

// loadManifest returns the manifest to fetch: the --manifest file when
// given, otherwise the built-in asset list
func loadManifest() (*model.Manifest, error) {
	if manifestPath != "" {
		return config.LoadManifest(manifestPath)
	}
	return config.DefaultManifest(), nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	settings := effectiveSettings(cmd, manifest)

	logger.Debug("starting fetch",
		zap.String("dir", settings.TargetDir),
		zap.Int("assets", len(manifest.Assets)),
		zap.Int("parallel", settings.MaxParallel),
		zap.Int("retries", settings.Retries))

	service := fetch.NewService(settings.TargetDir, settings.MaxParallel, settings.Timeout)
	service.SetRetries(settings.Retries)
	service.SetLogger(logger)
	service.SetUpdateCallback(reportFetchUpdate)

	fmt.Printf("Fetching %d assets into %s\n", len(manifest.Assets), settings.TargetDir)

	summary, err := service.Run(ctx, manifest)
	if err != nil {
		return err
	}

	if writeLock && summary.Succeeded > 0 {
		lockPath := filepath.Join(settings.TargetDir, settings.LockPath)
		lock, err := lockfile.Generate(manifest, settings.TargetDir)
		if err != nil {
			return err
		}
		if err := lock.Write(lockPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d entries)\n", lockPath, len(lock.Entries))
	}

	fmt.Printf("Done: %d/%d assets fetched (%.0f%%)\n", summary.Succeeded, summary.Attempted, manifest.Progress())
	if !summary.AllSucceeded() {
		return fmt.Errorf("%d of %d assets failed", summary.Failed, summary.Attempted)
	}
	return nil
}

// reportFetchUpdate prints one status line per task transition: the attempt
// line before the transfer, then OK or a warning
func reportFetchUpdate(task *model.FetchTask) {
	switch task.Status {
	case model.TaskStatusFetching:
		fmt.Printf(">> %s <- %s\n", task.GetDisplayName(), task.URL)
	case model.TaskStatusCompleted:
		fmt.Printf("OK %s (%s)\n", task.GetDisplayName(), task.SizeString())
	case model.TaskStatusError, model.TaskStatusStopped:
		fmt.Printf("WARN %s: %s\n", task.URL, task.LastError)
	}
}
