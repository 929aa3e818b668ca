package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/spf13/cobra"
)

var parseCanonical bool

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseCanonical, "canonical", false, "print the snapshot re-encoded in canonical wire form")
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse appearance text",
	Long: `Parse appearance text from a file, or stdin when the file is "-" or
omitted, and print the resulting snapshot. Useful for checking helper
output and snapshot files for the directory bridge.`,
	Args: cobra.MaximumNArgs(1),
	// Parsing needs no bridge, so a broken bridge config must not block it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(cmd); err != nil {
			logger.Debug().Err(err).Msg("ignoring configuration error for parse")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		s, err := appearance.Parse(text)
		if err != nil {
			return err
		}

		if parseCanonical {
			_, err := io.WriteString(cmd.OutOrStdout(), appearance.Format(s))
			return err
		}
		return writeSnapshots(cmd, []*appearance.Snapshot{s})
	},
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}
