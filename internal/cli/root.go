// Package cli implements the media-provisioner command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ortelius/media-provisioner/config"
	"github.com/ortelius/media-provisioner/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// Execute runs the CLI and returns the process exit code
func Execute() int {
	rootCmd := NewRootCmd(config.Load, util.InitLogger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// ConfigLoader loads the immutable configuration
type ConfigLoader func() (*config.Config, error)

// LoggerFactory builds the process logger
type LoggerFactory func() *zap.Logger

// NewRootCmd builds the command tree; loader and newLogger are injected so
// tests can run commands without the environment
func NewRootCmd(loader ConfigLoader, newLogger LoggerFactory) *cobra.Command {
	var output string

	rootCmd := &cobra.Command{
		Use:           "media-provisioner",
		Short:         "Provision media server accounts",
		Long:          "Creates and deletes user accounts on Emby, Jellyfin and Jellyseerr from one command.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")

	rootCmd.AddCommand(
		newServeCmd(loader, newLogger),
		newBatchCmd(AddUse, loader, newLogger),
		newBatchCmd(DeleteUse, loader, newLogger),
		newTokenCmd(loader),
	)

	return rootCmd
}

func getOutputFormat(cmd *cobra.Command) string {
	output, _ := cmd.Flags().GetString("output")
	return output
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
