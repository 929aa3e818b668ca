package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/spf13/cobra"
)

var watchIncludeInitial bool

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchIncludeInitial, "initial", true, "print the effective appearance before waiting for changes")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print appearance changes as they happen",
	Long: `Print every snapshot the registry installs until interrupted. With --jsonl
each change is one JSON line, suitable for piping into other tools.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		src, err := openSource(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer src.Close()

		return runWatch(ctx, cmd, src)
	},
}

// runWatch prints changes until ctx ends. Changes arrive on the callback
// thread and are handed to this goroutine so output never interleaves.
func runWatch(ctx context.Context, cmd *cobra.Command, src source) error {
	changes := make(chan *appearance.Snapshot, 64)
	remove := src.OnChange(func(ev appearance.ChangeEvent) {
		select {
		case changes <- ev.Appearance:
		default:
			logger.Warn().Str("name", ev.Appearance.Name()).Msg("output too slow, dropping change")
		}
	})
	defer remove()

	var initial *appearance.Snapshot
	if watchIncludeInitial {
		reqCtx, cancel := commandContext(ctx, requestTimeout)
		s, err := src.Effective(reqCtx)
		cancel()
		if err != nil {
			return err
		}
		if err := writeChange(cmd, s); err != nil {
			return err
		}
		initial = s
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-changes:
			// Loading the initial snapshot may itself report a change.
			if s == initial {
				continue
			}
			if err := writeChange(cmd, s); err != nil {
				return err
			}
		}
	}
}

func writeChange(cmd *cobra.Command, s *appearance.Snapshot) error {
	out := cmd.OutOrStdout()
	now := time.Now().UTC()
	if IsJSONOutput() || IsJSONLOutput() {
		view := newSnapshotView(s)
		view.ReceivedAt = &now
		// One object per line even with --json: the stream never ends.
		return writeJSONLine(out, view)
	}
	fmt.Fprintf(out, "[%s] ", now.Local().Format("15:04:05"))
	return writeSnapshot(out, s)
}
