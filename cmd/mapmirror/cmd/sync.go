package cmd

import (
	"github.com/spf13/cobra"
)

var (
	syncDryRun      bool
	syncMaxInFlight int
	syncMaxBuffered int
	syncLimit       int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and upload the maps that are not mirrored yet",
	Long: `Loads the mirrored state (from the snapshot, or by listing the bucket),
diffs it against the catalog and processes the missing maps in catalog
order. Maps that fail to download or whose checksum does not match are
skipped. An upload failure stops the run; everything uploaded before it
is kept and recorded in the snapshot.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("max-in-flight") {
			cfg.Sync.MaxInFlight = syncMaxInFlight
		}
		if cmd.Flags().Changed("max-buffered") {
			cfg.Sync.MaxBuffered = syncMaxBuffered
		}
		if cmd.Flags().Changed("limit") {
			cfg.Sync.Limit = syncLimit
		}

		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		m, done, err := buildMirror(ctx, cfg, logger, syncDryRun, newConsoleProgress(out))
		if err != nil {
			return err
		}
		defer done()

		result, err := m.Sync(ctx)
		if !quiet {
			printSyncSummary(out, result)
		}
		return err
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "write into the local directory instead of the bucket")
	syncCmd.Flags().IntVar(&syncMaxInFlight, "max-in-flight", 0, "concurrent downloads (default: CPU count)")
	syncCmd.Flags().IntVar(&syncMaxBuffered, "max-buffered", 0, "downloads held before upload (default: 4x max-in-flight)")
	syncCmd.Flags().IntVar(&syncLimit, "limit", 0, "process at most this many maps (0: no limit)")
	rootCmd.AddCommand(syncCmd)
}
