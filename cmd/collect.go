package cmd

import (
	"fmt"
	"os"

	"inventory-sync/core/config"
	"inventory-sync/core/logger"
	"inventory-sync/core/reconcile"
	"inventory-sync/feature/inventory/collector"
	"inventory-sync/feature/inventory/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var collectOut string

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect a snapshot of this machine",
	Long: `Reads hostname, OS, CPU, memory, network and boot information of the
local machine and prints it as JSON, or saves it to --out (.json, .yaml).`,
	Example: `  inventory-sync collect
  inventory-sync collect --out snapshots/$(hostname).yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := collector.New().Collect(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to collect snapshot: %w", err)
		}
		records := []reconcile.Record{rec}

		if collectOut == "" {
			return snapshot.Encode(os.Stdout, snapshot.FormatJSON, records)
		}
		if err := snapshot.WriteFile(collectOut, records); err != nil {
			return err
		}

		logg := commandLogger()
		logg.Info("Snapshot saved",
			zap.String("file", collectOut),
			zap.String("machine", rec.Value(collector.FieldComputerName)),
			zap.Int("fields", rec.Len()))
		return nil
	},
}

// commandLogger builds the configured logger, falling back to a console
// logger when configuration cannot be loaded.
func commandLogger() *zap.Logger {
	if cfg, err := config.LoadConfig(configDir); err == nil {
		if l, err := logger.New(&cfg.Log); err == nil {
			return l
		}
	}
	l, err := logger.New(&logger.Config{Level: "info", Format: "console"})
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func init() {
	RootCmd.AddCommand(collectCmd)
	collectCmd.Flags().StringVarP(&collectOut, "out", "o", "", "Write the snapshot to this file instead of stdout")
}
