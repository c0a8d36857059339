package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/dotseed/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/dotseed/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/dotseed/internal/version.Date={{.Date}}
)

// String returns the version line printed by `dotseed version`.
func String() string {
	return fmt.Sprintf("dotseed %s (commit %s, built %s)", Version, Commit, Date)
}
