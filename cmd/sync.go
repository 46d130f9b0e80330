package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"inventory-sync/core/reconcile"
	"inventory-sync/core/sheet"
	"inventory-sync/feature/inventory/collector"
	"inventory-sync/feature/inventory/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncFiles  []string
	syncDryRun bool
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile snapshots into the configured store",
	Long: `Upserts snapshots into the store selected by SYNC_BACKEND.
Snapshots are read from --file (repeatable, .json/.yaml) or, without files,
collected from this machine. The sync report is printed as JSON.`,
	Example: `  # Sync this machine
  inventory-sync sync

  # Sync collected files, planning only
  inventory-sync sync --file lab1.json --file lab2.yaml --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		records, err := loadBatch(cmd.Context(), syncFiles, rt.logger)
		if err != nil {
			return err
		}

		report := rt.service.Sync(cmd.Context(), records, syncDryRun)
		if err := printJSON(report); err != nil {
			return err
		}
		if err := report.Err(); err != nil {
			return err
		}

		if rt.cfg.Sync.Backend == reconcile.BackendMemory && !report.DryRun {
			rt.logger.Warn("The memory backend is not persisted; the resulting sheet follows")
			store, err := rt.service.Store(cmd.Context())
			if err != nil {
				return err
			}
			if s, ok := store.(*sheet.Sheet); ok {
				return s.Encode(os.Stdout)
			}
		}
		return nil
	},
}

// loadBatch reads records from files, or collects this machine when files is empty.
func loadBatch(ctx context.Context, files []string, logg *zap.Logger) ([]reconcile.Record, error) {
	if len(files) == 0 {
		rec, err := collector.New().Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to collect snapshot: %w", err)
		}
		return []reconcile.Record{rec}, nil
	}

	var records []reconcile.Record
	for _, f := range files {
		batch, err := snapshot.ReadFile(f)
		if err != nil {
			return nil, err
		}
		logg.Debug("Loaded snapshot file", zap.String("file", f), zap.Int("records", len(batch)))
		records = append(records, batch...)
	}
	return records, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	RootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringArrayVarP(&syncFiles, "file", "f", nil, "Snapshot file to sync (repeatable)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Plan the pass without writing")
}
