package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// listCmd prints the effective manifest without fetching anything
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the assets that would be fetched",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		if err := manifest.Validate(); err != nil {
			return err
		}
		settings := effectiveSettings(cmd, manifest)

		fmt.Printf("Manifest %q: %d assets -> %s\n", manifest.Name, len(manifest.Assets), settings.TargetDir)
		for _, asset := range manifest.Assets {
			line := fmt.Sprintf("  %s <- %s", asset.Name, asset.URL)
			if asset.SHA256 != "" {
				line += " (pinned)"
			}
			fmt.Println(line)
		}
		return nil
	},
}
