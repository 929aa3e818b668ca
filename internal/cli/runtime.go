package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/opencode-ai/appearances/internal/appearanced"
	"github.com/opencode-ai/appearances/internal/bridge"
	"github.com/opencode-ai/appearances/internal/config"
	"github.com/opencode-ai/appearances/internal/dispatch"
	"github.com/opencode-ai/appearances/internal/history"
	"github.com/opencode-ai/appearances/internal/logging"
)

// source is where commands read appearances from: the local registry or a
// running daemon.
type source interface {
	Get(ctx context.Context, name string) (*appearance.Snapshot, error)
	Effective(ctx context.Context) (*appearance.Snapshot, error)
	Names(ctx context.Context) (installed, known []string, err error)
	OnChange(fn func(appearance.ChangeEvent)) (remove func())
	Close() error
}

// localRuntime wires a bridge, the callback queue, the registry and the
// optional install history together.
type localRuntime struct {
	registry *appearance.Registry
	queue    *dispatch.Queue
	history  *history.Store
	closers  []func() error
}

var _ source = (*localRuntime)(nil)

func newBridge(cfg config.BridgeConfig) (appearance.Bridge, func() error, error) {
	switch cfg.Kind {
	case config.BridgeHelper:
		h := bridge.NewHelper(cfg.Helper, cfg.SearchPath)
		return h, h.Close, nil
	case config.BridgeDirectory:
		d := bridge.NewDirectory(cfg.Dir)
		return d, d.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown bridge kind %q", cfg.Kind)
	}
}

// newLocalRuntime starts a registry for cfg. The runtime lives until Close,
// not until ctx ends.
func newLocalRuntime(ctx context.Context, cfg *config.Config) (*localRuntime, error) {
	b, closeBridge, err := newBridge(cfg.Bridge)
	if err != nil {
		return nil, err
	}
	rt := &localRuntime{closers: []func() error{closeBridge}}

	opts := []appearance.RegistryOption{
		appearance.WithUpdateBuffer(cfg.Registry.UpdateBuffer),
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.history = store
		rt.closers = append(rt.closers, store.Close)
		opts = append(opts, appearance.WithInstallHook(store.Hook(logging.Component("history"))))
	}

	rt.queue = dispatch.New()
	rt.registry = appearance.NewRegistry(b, rt.queue, opts...)

	runCtx := context.WithoutCancel(ctx)
	if err := rt.queue.Start(runCtx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	if err := rt.registry.Start(runCtx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *localRuntime) Get(ctx context.Context, name string) (*appearance.Snapshot, error) {
	return rt.registry.Get(ctx, name)
}

func (rt *localRuntime) Effective(ctx context.Context) (*appearance.Snapshot, error) {
	return rt.registry.Effective(ctx)
}

func (rt *localRuntime) Names(ctx context.Context) ([]string, []string, error) {
	return rt.registry.Names(), appearance.KnownNames(), nil
}

func (rt *localRuntime) OnChange(fn func(appearance.ChangeEvent)) func() {
	return rt.registry.OnChange(fn)
}

// Close stops the registry and the callback queue, then releases the bridge
// and history in reverse order of acquisition.
func (rt *localRuntime) Close() error {
	if rt.registry != nil {
		rt.registry.Stop()
	}
	if rt.queue != nil {
		rt.queue.Stop()
	}
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// remoteSource reads from a running daemon.
type remoteSource struct {
	client *appearanced.Client
}

var _ source = (*remoteSource)(nil)

func (r *remoteSource) Get(ctx context.Context, name string) (*appearance.Snapshot, error) {
	return r.client.GetAppearance(ctx, name)
}

func (r *remoteSource) Effective(ctx context.Context) (*appearance.Snapshot, error) {
	return r.client.GetEffectiveAppearance(ctx)
}

func (r *remoteSource) Names(ctx context.Context) ([]string, []string, error) {
	names, err := r.client.ListAppearances(ctx)
	if err != nil {
		return nil, nil, err
	}
	return names.Installed, names.Known, nil
}

// OnChange follows the daemon's watch stream until remove is called.
func (r *remoteSource) OnChange(fn func(appearance.ChangeEvent)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := r.client.Watch(ctx, func(s *appearance.Snapshot) {
			fn(appearance.ChangeEvent{Appearance: s})
		}); err != nil {
			logger.Warn().Err(err).Msg("daemon watch ended")
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (r *remoteSource) Close() error {
	return r.client.Close()
}

// openSource connects to --daemon when given, otherwise starts a local
// registry from the configuration.
func openSource(ctx context.Context, progress io.Writer) (source, error) {
	cfg := GetConfig()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if daemonAddr != "" {
		client, err := appearanced.Dial(daemonAddr)
		if err != nil {
			return nil, err
		}
		return &remoteSource{client: client}, nil
	}

	step := startProgress(progress, bridgeLabel(cfg))
	rt, err := newLocalRuntime(ctx, cfg)
	if err != nil {
		step.Fail(err)
		return nil, err
	}
	step.Done()
	return rt, nil
}

func bridgeLabel(cfg *config.Config) string {
	if cfg.Bridge.Kind == config.BridgeDirectory {
		return fmt.Sprintf("Loading snapshots from %s", cfg.Bridge.Dir)
	}
	return fmt.Sprintf("Starting helper %s", cfg.Bridge.Helper)
}

func commandContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
