package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pzverkov/otrcrypto/pkg/crypto"
	pkgversion "github.com/pzverkov/otrcrypto/pkg/version"
)

// Build-time variables (set via -ldflags)
var (
	version   = ""        // Set via -ldflags "-X .../commands.version=x.y.z"
	buildTime = "unknown" // Set via -ldflags "-X .../commands.buildTime=..."
	gitCommit = "unknown" // Set via -ldflags "-X .../commands.gitCommit=..."
)

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.String()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "otrcrypto version %s\n", getVersion())
			fmt.Fprintf(out, "%s\n", pkgversion.Full())
			if buildTime != "unknown" {
				fmt.Fprintf(out, "Built: %s\n", buildTime)
			}
			commit := gitCommit
			if build := pkgversion.ReadBuild(); commit == "unknown" && build.Revision != "" {
				commit = build.Revision
				if build.Modified {
					commit += "-dirty"
				}
			}
			if commit != "unknown" {
				fmt.Fprintf(out, "Commit: %s\n", commit)
			}
			fmt.Fprintf(out, "FIPS mode: %v\n", crypto.FIPSMode())
			return nil
		},
	}
}
