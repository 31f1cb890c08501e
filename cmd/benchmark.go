package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/loadmatch/internal/ingest"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Manage lane market benchmarks",
}

var benchmarkImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import lane benchmarks from CSV",
	Long: `Imports lane rate benchmarks. The CSV needs origin and destination (or a
single lane column) and rate_per_mile; provider (dat, truckstop, internal),
distance_miles, transit_hours and as_of are optional.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "benchmark import"))

		asOf := time.Now().UTC()
		if v, _ := cmd.Flags().GetString("as-of"); v != "" {
			t, err := time.Parse(time.DateOnly, v)
			if err != nil {
				return eris.Wrapf(err, "benchmark import: --as-of %q", v)
			}
			asOf = t
		}

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "benchmark import: open %s", args[0])
		}
		defer f.Close() //nolint:errcheck

		benchmarks, warnings, err := ingest.ReadBenchmarks(ctx, f, asOf)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			log.Warn("row skipped", zap.Int("row", w.Record), zap.String("field", w.Field), zap.String("reason", w.Message))
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.PutBenchmarks(ctx, benchmarks)
		if err != nil {
			return err
		}
		log.Info("import complete",
			zap.String("file", args[0]),
			zap.Int64("imported", n),
			zap.Int("skipped", len(warnings)),
		)
		return nil
	},
}

func init() {
	benchmarkImportCmd.Flags().String("as-of", "", "date (YYYY-MM-DD) for rows without as_of (default: today)")
	benchmarkCmd.AddCommand(benchmarkImportCmd)
	rootCmd.AddCommand(benchmarkCmd)
}
