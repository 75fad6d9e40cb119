package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dolabella/internal/buildinfo"
	"dolabella/internal/sharedhttp"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var githubURL = "https://api.github.com/repos/dolabella/dolabella/releases/latest"

type release struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version info",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Println("Version:", buildinfo.Version)
		fmt.Println("Commit:", buildinfo.Commit)
		fmt.Println("Build date:", buildinfo.Date)
		fmt.Println()

		// the release check is informational, a failure never fails the command
		rel, err := latestRelease(cmd.Context(), sharedhttp.NewClient(10*time.Second), githubURL)
		if err != nil {
			fmt.Println("Could not check for updates:", err)
			return
		}

		if msg := updateMessage(buildinfo.Version, rel); msg != "" {
			fmt.Println(msg)
		}
	},
}

// latestRelease gets the latest release tag from api.
func latestRelease(ctx context.Context, client *http.Client, url string) (release, error) {
	var rel release

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return rel, errors.Wrap(err, "failed to create request")
	}

	body, err := sharedhttp.ExecRequest(client, req)
	if err != nil {
		// api returns 500 instead of 404 here
		return rel, errors.Wrap(err, "no release found")
	}

	if err := json.Unmarshal(body, &rel); err != nil {
		return rel, errors.Wrap(err, "failed to decode response from api")
	}

	return rel, nil
}

func updateMessage(current string, rel release) string {
	if rel.TagName == "" || rel.TagName == current || current == "dev" {
		return ""
	}

	return fmt.Sprintf("Update available: %s -> %s\nPublished at: %s",
		current, rel.TagName, rel.PublishedAt.Format(time.RFC3339))
}
