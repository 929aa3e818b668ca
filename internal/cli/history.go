package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/opencode-ai/appearances/internal/config"
	"github.com/opencode-ai/appearances/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyName  string
	historyLimit int
	historyRaw   bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyName, "name", "", "only show installs of this appearance")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of installs to show")
	historyCmd.Flags().BoolVar(&historyRaw, "raw", false, "include the raw appearance text")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded appearance installs",
	Long: `Show the install log, newest first. Installs are recorded when
history.enabled is set in the configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			cfg = config.DefaultConfig()
		}
		if _, err := os.Stat(cfg.History.Path); errors.Is(err, os.ErrNotExist) {
			if !cfg.History.Enabled {
				return fmt.Errorf("no install history at %s (set history.enabled to record installs)", cfg.History.Path)
			}
			return fmt.Errorf("no install history at %s yet", cfg.History.Path)
		}

		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context(), history.Query{
			Name:  resolveName(historyName),
			Limit: historyLimit,
		})
		if err != nil {
			return err
		}
		return writeHistory(cmd, records)
	},
}

func writeHistory(cmd *cobra.Command, records []*history.Record) error {
	out := cmd.OutOrStdout()
	if IsJSONOutput() || IsJSONLOutput() {
		if IsJSONLOutput() {
			for _, rec := range records {
				if err := writeJSONLine(out, rec); err != nil {
					return err
				}
			}
			return nil
		}
		return WriteOutput(out, records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No installs recorded.")
		return err
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.InstalledAt.Local().Format("2006-01-02 15:04:05"),
			rec.Name,
			rec.Source,
			formatYesNo(rec.IsDark),
			formatYesNo(rec.IsHighContrast),
			fmt.Sprintf("%d", rec.ColorCount),
		})
	}
	if err := writeTable(out, []string{"INSTALLED", "NAME", "SOURCE", "DARK", "HIGH CONTRAST", "COLORS"}, rows); err != nil {
		return err
	}

	if historyRaw {
		for _, rec := range records {
			fmt.Fprintf(out, "\n%s %s:\n%s\n", rec.ID, rec.Name, indent(rec.RawText, "  "))
		}
	}
	return nil
}
