// Package appearanced serves the appearance registry over gRPC.
package appearanced

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// watchBuffer is the number of change events held per watcher before new
// events are dropped.
const watchBuffer = 16

// Registry is the part of appearance.Registry the server uses.
type Registry interface {
	Get(ctx context.Context, name string) (*appearance.Snapshot, error)
	Effective(ctx context.Context) (*appearance.Snapshot, error)
	Names() []string
	OnChange(fn func(appearance.ChangeEvent)) (remove func())
}

// Server implements AppearanceService on top of a registry.
type Server struct {
	registry  Registry
	logger    zerolog.Logger
	startedAt time.Time
	hostname  string
	version   string

	closeOnce sync.Once
	closed    chan struct{}
}

var _ AppearanceService = (*Server)(nil)

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithVersion sets the reported daemon version.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates the gRPC service implementation.
func NewServer(registry Registry, logger zerolog.Logger, opts ...ServerOption) *Server {
	hostname, _ := os.Hostname()

	s := &Server{
		registry:  registry,
		logger:    logger,
		startedAt: time.Now(),
		hostname:  hostname,
		version:   "dev",
		closed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAppearance returns the current snapshot for a name.
func (s *Server) GetAppearance(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	name := strings.TrimSpace(req.GetValue())
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "appearance name is required")
	}
	snap, err := s.registry.Get(ctx, name)
	if err != nil {
		s.logger.Debug().Err(err).Str("name", name).Msg("get appearance failed")
		return nil, toStatus(err)
	}
	return s.encode(snap)
}

// GetEffectiveAppearance returns the application's effective appearance.
func (s *Server) GetEffectiveAppearance(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := s.registry.Effective(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("get effective appearance failed")
		return nil, toStatus(err)
	}
	return s.encode(snap)
}

// ListAppearances returns the installed and well-known appearance names.
func (s *Server) ListAppearances(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]any{
		"installed": stringsToAny(s.registry.Names()),
		"known":     stringsToAny(appearance.KnownNames()),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode names: %v", err)
	}
	return out, nil
}

// GetStatus reports daemon identity and uptime.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]any{
		"version":    s.version,
		"hostname":   s.hostname,
		"started_at": s.startedAt.UTC().Format(time.RFC3339),
		"uptime":     time.Since(s.startedAt).Round(time.Second).String(),
		"installed":  stringsToAny(s.registry.Names()),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode status: %v", err)
	}
	return out, nil
}

// Watch streams every installed snapshot until the client goes away. Events
// are received on the callback thread and must never block it, so a watcher
// that falls behind loses events.
func (s *Server) Watch(_ *emptypb.Empty, stream grpc.ServerStream) error {
	events := make(chan *appearance.Snapshot, watchBuffer)
	remove := s.registry.OnChange(func(ev appearance.ChangeEvent) {
		select {
		case events <- ev.Appearance:
		default:
			s.logger.Warn().Str("name", ev.Appearance.Name()).Msg("watcher too slow, dropping change event")
		}
	})
	defer remove()

	s.logger.Debug().Msg("watcher connected")
	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("watcher disconnected")
			return nil
		case <-s.closed:
			return status.Error(codes.Unavailable, "server shutting down")
		case snap := <-events:
			msg, err := s.encode(snap)
			if err != nil {
				return err
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		}
	}
}

// Close ends all open watches. Graceful shutdown waits for streams, so this
// must run first.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

func (s *Server) encode(snap *appearance.Snapshot) (*structpb.Struct, error) {
	out, err := snapshotToStruct(snap)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode appearance: %v", err)
	}
	return out, nil
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
