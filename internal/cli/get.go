package cli

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(effectiveCmd)
	rootCmd.AddCommand(listCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <name>...",
	Short: "Show named appearances",
	Long: `Show the current snapshot of one or more named appearances, for example
NSAppearanceNameDarkAqua. Short names (aqua, darkaqua, vibrantlight,
vibrantdark) are accepted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd.Context(), requestTimeout)
		defer cancel()

		src, err := openSource(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer src.Close()

		snapshots := make([]*appearance.Snapshot, 0, len(args))
		for _, arg := range args {
			s, err := src.Get(ctx, resolveName(arg))
			if err != nil {
				return err
			}
			snapshots = append(snapshots, s)
		}
		return writeSnapshots(cmd, snapshots)
	},
}

var effectiveCmd = &cobra.Command{
	Use:   "effective",
	Short: "Show the effective appearance",
	Long:  "Show the snapshot of the appearance the application currently uses.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd.Context(), requestTimeout)
		defer cancel()

		src, err := openSource(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer src.Close()

		s, err := src.Effective(ctx)
		if err != nil {
			return err
		}
		return writeSnapshots(cmd, []*appearance.Snapshot{s})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List appearance names",
	Long:  "List the well-known appearance names and whether each has been loaded.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd.Context(), requestTimeout)
		defer cancel()

		src, err := openSource(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer src.Close()

		installed, known, err := src.Names(ctx)
		if err != nil {
			return err
		}
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), map[string][]string{
				"installed": installed,
				"known":     known,
			})
		}
		return writeNames(cmd.OutOrStdout(), installed, known)
	},
}

func writeSnapshots(cmd *cobra.Command, snapshots []*appearance.Snapshot) error {
	out := cmd.OutOrStdout()
	if IsJSONLOutput() {
		for _, s := range snapshots {
			if err := WriteOutput(out, newSnapshotView(s)); err != nil {
				return err
			}
		}
		return nil
	}
	if IsJSONOutput() {
		if len(snapshots) == 1 {
			return WriteOutput(out, newSnapshotView(snapshots[0]))
		}
		views := make([]SnapshotView, len(snapshots))
		for i, s := range snapshots {
			views[i] = newSnapshotView(s)
		}
		return WriteOutput(out, views)
	}

	for i, s := range snapshots {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := writeSnapshot(out, s); err != nil {
			return err
		}
	}
	return nil
}

var shortNames = map[string]string{
	"aqua":         appearance.Aqua,
	"darkaqua":     appearance.DarkAqua,
	"vibrantlight": appearance.VibrantLight,
	"vibrantdark":  appearance.VibrantDark,
}

// resolveName expands short names; anything else is used as given.
func resolveName(arg string) string {
	if full, ok := shortNames[normalizeShortName(arg)]; ok {
		return full
	}
	return arg
}

func normalizeShortName(arg string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(arg))
}
