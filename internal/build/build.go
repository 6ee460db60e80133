// Package build holds build-time metadata stamped in via -ldflags.
package build

var (
	// Version is the release version of the client, set at link time.
	Version = "dev"

	// Commit is the git commit the binary was built from, set at link time.
	Commit = ""

	// Date is the build timestamp, set at link time.
	Date = ""
)
