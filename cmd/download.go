package cmd

import (
	"fmt"
	"strings"

	"dolabella/internal/parse"
	"dolabella/internal/source"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download volumes of a manga without prompting",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := source.ValidateID(manga); err != nil {
			return err
		}

		selection, err := parse.VolumeSelection(volumes)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		selectedManga, err := a.catalog.GetManga(ctx, manga)
		if err != nil {
			return errors.Wrapf(err, "failed to get manga from %s", a.catalog)
		}

		agg, err := a.catalog.Aggregate(ctx, selectedManga.ID)
		if err != nil {
			return errors.Wrapf(err, "failed to get volumes for %q", selectedManga.Title)
		}

		selected := agg.Select(selection)
		if len(selected) == 0 {
			return fmt.Errorf("failed to find matching volumes in range %s for %q", volumes, selectedManga.Title)
		}

		labels := make([]string, 0, len(selected))
		for _, v := range selected {
			labels = append(labels, v.Label)
		}
		fmt.Printf("Downloading volumes %s of %q...\n", strings.Join(labels, ", "), selectedManga.Title)

		report, err := a.downloader.Run(ctx, selectedManga, selected)
		if err != nil {
			return err
		}

		for _, res := range report.Succeeded() {
			fmt.Printf("Dropped at %s\n", res.Path)
		}

		return report.Err()
	},
}
