package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vendorget/vendorget/internal/bundle"
	"github.com/vendorget/vendorget/internal/model"
	"github.com/vendorget/vendorget/internal/platform"
)

// bundleCmd archives the vendor directory for transfer to an offline machine
var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Archive the vendor directory into a zip",
	Long: `Archives the vendor directory into a single zip next to it. Interrupting
the command stops the archiving and removes the partial archive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		inputSize, err := platform.DirSize(targetDir)
		if err != nil {
			return err
		}

		service := bundle.NewService()

		task, err := service.StartBundle(targetDir)
		if err != nil {
			return err
		}

		// An interrupt cancels the task; StopBundle on an already
		// finished task is a harmless error.
		go func() {
			<-ctx.Done()
			_ = service.StopBundle(task.ID)
		}()

		fmt.Printf("Bundling %s (%s) -> %s\n", task.InputDir, humanize.Bytes(uint64(inputSize)), task.OutputPath)
		service.WaitTask(task.ID)

		switch task.Status {
		case model.TaskStatusStopped:
			return fmt.Errorf("bundle cancelled, partial archive removed")
		case model.TaskStatusCompleted:
		default:
			return fmt.Errorf("bundle failed: %s", task.LastError)
		}

		info, err := os.Stat(task.OutputPath)
		if err != nil {
			return fmt.Errorf("bundle finished but archive is unreadable: %w", err)
		}

		fmt.Printf("OK %s (%s)\n", task.OutputPath, humanize.Bytes(uint64(info.Size())))
		return nil
	},
}
