package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/opencode-ai/appearances/internal/tui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the appearance viewer",
	Long:  "Open a terminal view of the effective appearance that follows changes live.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if IsNonInteractive() {
			return errors.New("the viewer requires an interactive terminal; use 'appearances watch' instead")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		src, err := openSource(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer src.Close()

		return tui.Run(ctx, src)
	},
}
