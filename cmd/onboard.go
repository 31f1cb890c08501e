package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/loadmatch/internal/ingest"
	"github.com/sells-group/loadmatch/internal/onboard"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard <file>...",
	Short: "Build or extend a carrier profile from booking files",
	Long: `Reads CSV, TSV, XLSX or JSON booking files, normalizes them into a carrier
profile, enriches every lane and saves the result.

Examples:
  # New carrier from a booking sheet
  onboard --name "Gulf Coast Hauling" --mc 778899 bookings.xlsx

  # Add another upload to an existing carrier
  onboard --carrier-id 5b0e... confirmations.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOnboard,
}

func init() {
	f := onboardCmd.Flags()
	f.String("carrier-id", "", "existing carrier to extend (default: create a new carrier)")
	f.String("name", "", "carrier name")
	f.String("mc", "", "carrier MC number")
	f.String("format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := zap.L().With(zap.String("command", "onboard"))

	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "table", "json", "yaml"); err != nil {
		return err
	}

	records, err := ingest.ReadFiles(ctx, args)
	if err != nil {
		return eris.Wrap(err, "onboard: read files")
	}
	log.Info("records read", zap.Int("files", len(args)), zap.Int("records", len(records)))

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	svc, err := newService(cfg, st)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("carrier-id")
	name, _ := cmd.Flags().GetString("name")
	mc, _ := cmd.Flags().GetString("mc")
	res, err := svc.Onboard(ctx, onboard.Request{CarrierID: id, CarrierName: name, MCNumber: mc, Records: records})
	if err != nil {
		return err
	}

	if format != "table" {
		return writeStructured(os.Stdout, format, res)
	}
	formatOnboardResult(os.Stdout, res)
	return nil
}

func formatOnboardResult(out io.Writer, res *onboard.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Carrier:\t%s\n", res.CarrierID)
	if res.Profile.CarrierName != "" {
		_, _ = fmt.Fprintf(w, "Name:\t%s\n", res.Profile.CarrierName)
	}
	_, _ = fmt.Fprintf(w, "Records:\t%d (%d skipped)\n", res.Normalize.Records, res.Normalize.Skipped)
	_, _ = fmt.Fprintf(w, "Brokers:\t%d\n", len(res.Profile.Brokers))
	_, _ = fmt.Fprintf(w, "Loads:\t%d (%d duplicates merged)\n", len(res.Profile.Loads), res.Normalize.DuplicateLoads)
	_, _ = fmt.Fprintf(w, "Lanes:\t%d\n", len(res.Profile.Lanes))
	_, _ = fmt.Fprintf(w, "Enriched:\t%d benchmark, %d estimated, %d cached, %d unresolved\n",
		res.Enrich.Benchmarks, res.Enrich.Estimated, res.Enrich.CacheHits, res.Enrich.Unresolved)
	_, _ = fmt.Fprintf(w, "Rates filled:\t%d\n", res.RatesFilled)
	_, _ = fmt.Fprintf(w, "Warnings:\t%d\n", len(res.Warnings))
	_ = w.Flush()

	for _, warn := range res.Warnings {
		_, _ = fmt.Fprintf(out, "  record %d: %s\n", warn.Record, warn.Message)
	}
}
