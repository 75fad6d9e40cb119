package cmd

var (
	configPath string
	quiet      bool

	libraryRoot string
	naming      string

	manga   string
	volumes string
)

func initRootFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"specifies the path to your config directory",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&quiet,
		"quiet",
		"q",
		false,
		"disable progress bars",
	)
	rootCmd.PersistentFlags().StringVarP(
		&libraryRoot,
		"library",
		"d",
		"",
		"overrides the directory assembled chapters are saved to",
	)
	rootCmd.PersistentFlags().StringVarP(
		&naming,
		"naming",
		"n",
		"",
		"overrides the naming template used for chapter files, e.g. \"Ch. {chapter:3}\"",
	)
}

func initDownloadFlags() {
	downloadCmd.Flags().StringVarP(
		&manga,
		"manga",
		"m",
		"",
		"specifies the MangaDex id of the manga you want to download",
	)
	downloadCmd.Flags().StringVarP(
		&volumes,
		"volumes",
		"V",
		"",
		`specifies the volumes you want to download, e.g. "1-3", "5, 7" or "none"`,
	)

	_ = downloadCmd.MarkFlagRequired("manga")
	_ = downloadCmd.MarkFlagRequired("volumes")
}
