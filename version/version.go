// Package version holds build metadata injected at link time via -ldflags.
package version

import "runtime"

var (
	// GitRelease is the release tag (e.g. v0.3.0) or "dev" for local builds.
	GitRelease = "dev"

	// GitCommit is the short commit hash the binary was built from.
	GitCommit = "unknown"

	// GitCommitDate is the commit date in RFC 3339 format.
	GitCommitDate = "unknown"

	// GoInfo is the Go toolchain version used for the build.
	GoInfo = runtime.Version()
)
