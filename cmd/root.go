package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dolabella [query...]",
	Short: "Search MangaDex and download volumes as PDF files.",
	Long: `Search MangaDex and download volumes as PDF files.

Running dolabella with a query is the same as "dolabella search <query>".

Provide a configuration file using one of the following methods:
1. Use the --config <path> or -c <path> flag.
2. Place a config.yaml file in the directory of the binary.
3. Place a config.yaml file in the default user configuration directory (e.g., ~/.config/dolabella/).
4. Place a config.yaml file a folder inside your home directory (e.g., ~/.dolabella/).

Chapters are assembled with ImageMagick ("magick" must be on your PATH),
or with the builtin converter when configured.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runSearch(cmd, args)
	},
}

func init() {
	initRootFlags()
	initDownloadFlags()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(downloadCmd)
}

func Execute() {
	// cancelling the context stops new requests, in-progress chapters still clean up
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln("Error:", err)
		stop()
		os.Exit(1)
	}
}
