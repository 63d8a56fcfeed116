// Command skillhook is the host-facing transport for the skill router.
// It reads one JSON hook event from stdin, decides and emits the
// activation set on stdout, and logs diagnostics to stderr. It takes no
// flags; configuration lives in the settings file (see SKILLROUTER_CONFIG).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	skillrouter "github.com/flexigpt/skillrouter-go"
	"github.com/flexigpt/skillrouter-go/internal/hook"
	"github.com/flexigpt/skillrouter-go/scorer/keyword"
)

func main() {
	cmd := &cobra.Command{
		Use:           "skillhook",
		Short:         "Decide and emit skill activations for one conversation turn",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runHook,
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "skillhook:", err)
		os.Exit(1)
	}
}

func runHook(cmd *cobra.Command, args []string) error {
	settings, err := hook.LoadSettings(hook.SettingsPath())
	if err != nil {
		return err
	}

	logger := newLogger(settings.LogLevel)

	rt, err := skillrouter.New(
		skillrouter.WithLogger(logger),
		skillrouter.WithCatalogFile(settings.CatalogFile),
		skillrouter.WithContentDir(settings.ContentDir),
		skillrouter.WithLedgerDir(settings.LedgerDir),
		skillrouter.WithScorer(keyword.New()),
		skillrouter.WithThresholds(settings.Thresholds.High, settings.Thresholds.Low),
		skillrouter.WithTierCaps(settings.Tiers.MaxAdmit, settings.Tiers.MaxConsider),
		skillrouter.WithCapacity(settings.Capacity),
		skillrouter.WithScoreCacheTTL(settings.ScoreCacheTTL),
	)
	if err != nil {
		return err
	}

	return hook.Run(cmd.Context(), rt, os.Stdin, os.Stdout)
}

// newLogger logs to stderr only; stdout belongs to the activation output.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	h := tint.NewHandler(os.Stderr, &tint.Options{
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		TimeFormat: time.Kitchen,
		Level:      lvl,
	})
	return slog.New(h)
}
