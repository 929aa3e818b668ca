package cli

import (
	"os/signal"
	"syscall"

	"github.com/opencode-ai/appearances/internal/appearanced"
	"github.com/opencode-ai/appearances/internal/config"
	"github.com/opencode-ai/appearances/internal/logging"
	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve appearances over gRPC",
	Long: `Run the appearances daemon. It keeps one registry for all clients, so
the native helper is started once and every client sees the same
snapshots and change events.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := GetConfig()
		if cfg == nil {
			cfg = config.DefaultConfig()
		}

		rt, err := newLocalRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		daemon, err := appearanced.New(cfg, rt.registry, logging.Component("appearanced"), appearanced.Options{
			Hostname: serveHost,
			Port:     servePort,
			Version:  appVersion,
		})
		if err != nil {
			return err
		}
		return daemon.Run(ctx)
	},
}
