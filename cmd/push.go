package cmd

import (
	"time"

	"inventory-sync/core/config"
	"inventory-sync/core/middleware/auth"
	"inventory-sync/feature/inventory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	pushURL     string
	pushAPIKey  string
	pushFiles   []string
	pushDryRun  bool
	pushTimeout time.Duration
)

// pushCmd represents the push command
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Send snapshots to a remote inventory server",
	Long: `Posts snapshots to the /inventory/sync endpoint of a running server.
Without --file the local machine is collected and sent. The API key defaults
to SERVER_API_KEY.`,
	Example: `  inventory-sync push --url http://inventory:8080
  inventory-sync push --url http://inventory:8080 --file lab.yaml --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logg := commandLogger()
		defer logg.Sync()

		apiKey := pushAPIKey
		if apiKey == "" {
			if cfg, err := config.LoadConfig(configDir); err == nil {
				apiKey = cfg.Server.ApiKey
			}
		}

		records, err := loadBatch(cmd.Context(), pushFiles, logg)
		if err != nil {
			return err
		}

		report, err := inventory.NewPushClient(pushURL, apiKey, pushTimeout).Push(records, pushDryRun)
		if report != nil {
			if perr := printJSON(report); perr != nil {
				return perr
			}
		}
		if err != nil {
			return err
		}

		logg.Info("Snapshots pushed",
			zap.String("url", pushURL),
			zap.Int("records", len(records)),
			zap.Int("updated", report.Updated),
			zap.Int("added", report.Added),
			zap.Int("total", report.Total))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(pushCmd)
	pushCmd.Flags().StringVar(&pushURL, "url", "", "Base URL of the inventory server")
	pushCmd.Flags().StringVar(&pushAPIKey, "api-key", "", "API key sent in the "+auth.HeaderName+" header")
	pushCmd.Flags().StringArrayVarP(&pushFiles, "file", "f", nil, "Snapshot file to push (repeatable)")
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Ask the server to plan without writing")
	pushCmd.Flags().DurationVar(&pushTimeout, "timeout", 30*time.Second, "Request timeout")
	_ = pushCmd.MarkFlagRequired("url")
}
