package buildinfo

// set via ldflags
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)
