package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/loadmatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "loadmatch",
	Short: "Carrier onboarding and load matching",
	Long: "Normalizes a carrier's booking history into a profile, enriches its lanes with " +
		"distance and market rate estimates, and ranks candidate loads against it.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		switch mode := commandMode(cmd); mode {
		case "help", "completion":
			return nil
		default:
			return cfg.Validate(mode)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// commandMode names the config mode a command validates against: the
// top-level command under root.
func commandMode(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
