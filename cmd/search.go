package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"dolabella/internal/session"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search a manga and pick the volumes to download interactively",
	Args:  cobra.ArbitraryArgs,
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp()
	if err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		fmt.Println("What are we downloading?")
		fmt.Print("> ")

		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return errors.Wrap(err, "could not read query")
		}
		query = strings.TrimSpace(line)
	}

	if query == "" {
		return errors.New("query can't be empty")
	}

	results, err := a.catalog.Search(ctx, query)
	if err != nil {
		return errors.Wrapf(err, "failed to search %s", a.catalog)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	s := session.New(a.catalog, a.downloader, results, in, os.Stdout, session.Options{
		Language: a.cfg.Config.Language,
	}, a.log)

	if err := s.Run(ctx); err != nil {
		return err
	}

	if report := s.Report(); report != nil {
		return report.Err()
	}

	return nil
}
