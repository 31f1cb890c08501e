package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/loadmatch/internal/onboard"
)

var statusCmd = &cobra.Command{
	Use:   "status <carrier-id>",
	Short: "Show a carrier's onboarding status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format, "table", "json", "yaml"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc, err := newService(cfg, st)
		if err != nil {
			return err
		}
		rep, err := svc.Status(ctx, args[0])
		if err != nil {
			return err
		}

		if format != "table" {
			return writeStructured(os.Stdout, format, rep)
		}
		formatStatus(os.Stdout, rep)
		return nil
	},
}

func init() {
	statusCmd.Flags().String("format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(statusCmd)
}

func formatStatus(out io.Writer, r *onboard.StatusReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Carrier:\t%s\n", r.CarrierID)
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", r.Status)
	_, _ = fmt.Fprintf(w, "Message:\t%s\n", r.Message)
	if r.Status != onboard.StatusNotFound {
		_, _ = fmt.Fprintf(w, "Brokers:\t%d\n", r.Brokers)
		_, _ = fmt.Fprintf(w, "Loads:\t%d\n", r.Loads)
		_, _ = fmt.Fprintf(w, "Lanes:\t%d (%d enriched)\n", r.Lanes, r.Enriched)
		_, _ = fmt.Fprintf(w, "Updated:\t%s\n", r.UpdatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}
