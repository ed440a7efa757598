package cmd

import (
	"github.com/spf13/cobra"
)

var cleanupDryRun bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete mirrored maps that are no longer in the catalog",
	Long: `Lists the bucket and the catalog and deletes every mirrored map the
catalog no longer offers, then regenerates the index page, badges and
snapshot. With --dry-run the stale maps are only listed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		m, done, err := buildMirror(ctx, cfg, logger, false, nil)
		if err != nil {
			return err
		}
		defer done()

		result, err := m.Cleanup(ctx, cleanupDryRun)
		if !quiet {
			printCleanupSummary(out, result)
		}
		return err
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "list stale maps without deleting them")
	rootCmd.AddCommand(cleanupCmd)
}
