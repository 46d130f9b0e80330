package cmd

import (
	"fmt"

	"inventory-sync/feature/integrity"
	"inventory-sync/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag  bool
	jsonFlag bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Verify that the configured store is well-formed",
	Long: `Checks the store for a missing or repeated header, a missing key column,
duplicate keys, rows without a key, rows wider than the header and unsorted
rows. With the sql backend the sheet_rows table is inspected too; with the
object backend the bucket is. --fix sorts an unsorted store and creates a
missing bucket; duplicates and orphan rows are only reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		logg := rt.logger
		defer logg.Sync()

		svc := integrity.NewService(rt.service, rt.db, rt.storage, rt.cfg.Storage, rt.cfg.Sync.Sheet, logg)

		if fixFlag {
			if svc.HasStorage() {
				logg.Info("Ensuring bucket exists...")
				if err := svc.FixBucket(ctx); err != nil {
					return fmt.Errorf("failed to create bucket: %w", err)
				}
			}
			logg.Info("Sorting store if needed...")
			if _, err := svc.FixStore(ctx); err != nil {
				return fmt.Errorf("failed to fix store: %w", err)
			}
		}

		report := svc.Run(ctx)
		if jsonFlag {
			if err := printJSON(report); err != nil {
				return err
			}
		}

		for check, msg := range report.Errors {
			logg.Error("Check could not run", zap.String("check", check), zap.String("error", msg))
		}
		if report.Store != nil {
			logStoreReport(logg, report.Store)
		}
		if s := report.Schema; s != nil {
			if s.Matched {
				logg.Info("Sheet table matches the expected definition.", zap.String("table", s.Table))
			} else {
				logg.Warn("Sheet table mismatches found",
					zap.String("table", s.Table),
					zap.Strings("missing_columns", s.MissingColumns),
					zap.Strings("type_mismatches", s.TypeMismatches),
					zap.Strings("errors", s.Errors))
			}
		}
		if b := report.Bucket; b != nil {
			if b.Exists {
				logg.Info("Bucket is present.", zap.String("bucket", b.Bucket), zap.Bool("sheet_present", b.Present), zap.Strings("sheets", b.Sheets))
			} else {
				logg.Warn("Bucket does not exist. Run with --fix to create it.", zap.String("bucket", b.Bucket))
			}
		}

		if !report.Healthy {
			return fmt.Errorf("integrity check found problems")
		}
		logg.Info("Store is intact.")
		return nil
	},
}

func logStoreReport(logg *zap.Logger, r *checks.StoreReport) {
	logg.Info("Checked store", zap.Int("rows", r.Rows), zap.Strings("header", r.Header))
	for _, issue := range r.Issues {
		fields := []zap.Field{zap.String("check", issue.Check), zap.String("detail", issue.Detail)}
		if len(issue.Positions) > 0 {
			fields = append(fields, zap.Ints("positions", issue.Positions))
		}
		if len(issue.Values) > 0 {
			fields = append(fields, zap.Strings("values", issue.Values))
		}
		logg.Warn("Store invariant violated", fields...)
	}
	if r.Has(checks.CheckUnsorted) && !fixFlag {
		logg.Info("Run with --fix to sort the store.")
	}
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Sort an unsorted store and create a missing bucket")
	integrityCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the full report as JSON")
}
