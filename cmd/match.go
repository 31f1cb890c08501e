package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/loadmatch/internal/ingest"
	"github.com/sells-group/loadmatch/internal/match"
	"github.com/sells-group/loadmatch/internal/onboard"
)

var matchCmd = &cobra.Command{
	Use:   "match <carrier-id> <candidates-file>...",
	Short: "Rank candidate loads for a carrier",
	Long: `Reads candidate loads from booking-style files and ranks them against a
stored carrier profile. Every score comes with the reasons that produced it.

Examples:
  # Top 10 matches as a table
  match 5b0e... board.csv --limit 10

  # All matches as CSV with custom weights
  match 5b0e... board.xlsx --limit 0 --format csv --weights weights.yaml --output ranked.csv`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.Int("limit", -1, "maximum matches to return (0=all, default from config)")
	f.String("format", "table", "output format: table, csv, json or yaml")
	f.String("output", "", "output file path (default: stdout)")
	f.String("weights", "", "YAML file overriding match weights")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "table", "csv", "json", "yaml"); err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		limit = cfg.Match.DefaultLimit
	}
	if path, _ := cmd.Flags().GetString("weights"); path != "" {
		weights, err := match.LoadWeights(path, cfg.Match)
		if err != nil {
			return err
		}
		cfg.Match = weights
	}

	records, err := ingest.ReadFiles(ctx, args[1:])
	if err != nil {
		return eris.Wrap(err, "match: read candidates")
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

	candidates, warnings := svc.Candidates(records)
	res, err := svc.Matches(ctx, args[0], candidates, limit)
	if err != nil {
		return err
	}
	res.Warnings = append(warnings, res.Warnings...)

	out := io.Writer(os.Stdout)
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "match: create output file %s", path)
		}
		defer f.Close() //nolint:errcheck
		out = f
	}

	switch format {
	case "csv":
		return writeMatchCSV(out, res.Matches)
	case "table":
		return writeMatchTable(out, res)
	default:
		return writeStructured(out, format, res)
	}
}

func writeMatchCSV(w io.Writer, matches []match.ScoredMatch) error {
	cw := csv.NewWriter(w)

	header := []string{"rank", "load_id", "origin", "destination", "broker", "rate", "score", "reasons"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "match: write CSV header")
	}
	for i, m := range matches {
		row := []string{
			strconv.Itoa(i + 1),
			m.Load.ID,
			m.Load.Origin,
			m.Load.Destination,
			brokerLabel(m),
			rateLabel(m),
			strconv.FormatFloat(m.Score, 'f', 4, 64),
			strings.Join(m.Reasons, "; "),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "match: write CSV row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "match: flush CSV")
}

func writeMatchTable(w io.Writer, res *onboard.MatchResult) error {
	header := fmt.Sprintf("%-4s %-14s %-44s %-24s %10s %6s  %s\n",
		"#", "Load", "Lane", "Broker", "Rate", "Score", "Reasons")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "match: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 120)); err != nil {
		return eris.Wrap(err, "match: write table separator")
	}

	for i, m := range res.Matches {
		line := fmt.Sprintf("%-4d %-14s %-44s %-24s %10s %6.3f  %s\n",
			i+1, clip(m.Load.ID, 14), clip(m.Load.Origin+" → "+m.Load.Destination, 44),
			clip(brokerLabel(m), 24), rateLabel(m), m.Score, strings.Join(m.Reasons, ", "))
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "match: write table row")
		}
	}

	s := res.Summary
	_, _ = fmt.Fprintf(w, "\n--- Summary ---\n")
	_, _ = fmt.Fprintf(w, "Matches:         %d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Average score:   %.3f\n", s.AverageScore)
	_, _ = fmt.Fprintf(w, "High confidence: %d\n", s.HighConfidence)

	reasons := make([]string, 0, len(s.Reasons))
	for r := range s.Reasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		_, _ = fmt.Fprintf(w, "  %-26s %d\n", r+":", s.Reasons[r])
	}
	if len(res.Warnings) > 0 {
		_, _ = fmt.Fprintf(w, "Warnings:        %d\n", len(res.Warnings))
	}
	return nil
}

func brokerLabel(m match.ScoredMatch) string {
	switch {
	case m.Load.BrokerName != "":
		return m.Load.BrokerName
	case m.Load.BrokerMC != "":
		return "MC " + m.Load.BrokerMC
	default:
		return ""
	}
}

func rateLabel(m match.ScoredMatch) string {
	if m.Load.Rate == nil {
		return ""
	}
	return fmt.Sprintf("$%.2f", m.Load.Rate.Amount)
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
