// Package version holds the release version of otrcrypto.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/pzverkov/otrcrypto/internal/constants"
)

// Semantic version components.
const (
	Major = 0
	Minor = 1
	Patch = 0
	Label = "" // pre-release label, empty for releases
)

// String returns the semantic version, for example "v0.1.0".
func String() string {
	v := fmt.Sprintf("v%d.%d.%d", Major, Minor, Patch)
	if Label != "" {
		v += "-" + Label
	}
	return v
}

// Full returns the version with the OTR protocol version and the Go
// toolchain, for example "otrcrypto v0.1.0 (OTRv3, go1.26.0 linux/amd64)".
func Full() string {
	return fmt.Sprintf("%s %s (OTRv%d, %s %s/%s)", constants.LibraryName, String(),
		constants.ProtocolVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Build describes the binary as recorded by the Go toolchain.
type Build struct {
	Revision string // VCS commit, empty if unknown
	Time     string // VCS commit time (RFC 3339), empty if unknown
	Modified bool   // working tree had local changes
}

// ReadBuild returns the VCS stamp embedded by "go build". Binaries built
// without VCS information return a zero Build.
func ReadBuild() Build {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Build{}
	}
	var b Build
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Revision = s.Value
		case "vcs.time":
			b.Time = s.Value
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}
