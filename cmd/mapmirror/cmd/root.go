package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	verbose    bool
	quiet      bool
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "mapmirror",
	Short: "Mirror DDNet maps into an object store",
	Long: `mapmirror keeps an object store in sync with a remote catalog of map files.
Each run lists the catalog, fetches the maps that are not mirrored yet,
checks them against the checksum in their filename, uploads them and
regenerates the index page, status badges and state snapshot.

Without UPLOAD (or storage.upload) set, files are written to a local
directory instead of the bucket.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mapmirror %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: $XDG_CONFIG_HOME/mapmirror/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output and debug logs")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		return err
	}
	return nil
}
