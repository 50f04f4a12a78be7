package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version, set at build time with
// -ldflags "-X github.com/mesh-intelligence/silk/internal/cli.Version=...".
var Version = "0.1.0-dev"

const modulePath = "github.com/mesh-intelligence/silk"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the silk version",
		// Version needs no config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "silk v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
