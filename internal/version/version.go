package version

import "fmt"

// These variables are set at build time using -ldflags
// Example: go build -ldflags "-X candedit/internal/version.Version=0.3.0"
var (
	// Version is the semantic version of the application
	Version = "0.3.0"

	// BuildTime is the time the binary was built (set via ldflags)
	BuildTime = "unknown"

	// GitCommit is the git commit hash (set via ldflags)
	GitCommit = "unknown"
)

// String is the one-line form printed by the version command.
func String() string {
	return fmt.Sprintf("candedit v%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
