package pageglot

// Name is the project name.
const Name = "pageglot"

// Version is the current release version.
const Version = "0.1.0"

// Build-time variables, overridable with ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)
