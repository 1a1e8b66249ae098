// Package buildinfo carries version metadata stamped in at link time:
//
//	go build -ldflags "-X 'github.com/m3rciful/mediareq/core/buildinfo.Version=v0.3.0' \
//	  -X 'github.com/m3rciful/mediareq/core/buildinfo.Commit=$(git rev-parse --short HEAD)' \
//	  -X 'github.com/m3rciful/mediareq/core/buildinfo.Date=$(date -u +%FT%TZ)'" ./cmd/mediareq
package buildinfo

var (
	// Version is the release tag; "dev" for local builds.
	Version = "dev"
	// Commit is the short source revision.
	Commit = "local"
	// Date is the RFC3339 build timestamp.
	Date = ""
)

// String renders the build metadata for the --version flag.
func String() string {
	s := Version + " (" + Commit
	if Date != "" {
		s += ", " + Date
	}
	return s + ")"
}
