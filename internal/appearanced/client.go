package appearanced

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opencode-ai/appearances/internal/appearance"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a running daemon.
type Client struct {
	conn *grpc.ClientConn
}

// Status describes a running daemon.
type Status struct {
	Version   string
	Hostname  string
	StartedAt string
	Uptime    string
	Installed []string
}

// Names lists appearance names known to a daemon.
type Names struct {
	Installed []string
	Known     []string
}

// Dial connects to a daemon at addr. Extra dial options are appended to an
// insecure transport, which is all a loopback daemon needs.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// GetAppearance fetches the current snapshot for name.
func (c *Client) GetAppearance(ctx context.Context, name string) (*appearance.Snapshot, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodGetAppearance, wrapperspb.String(name), out); err != nil {
		return nil, fromStatus(err)
	}
	return snapshotFromStruct(out)
}

// GetEffectiveAppearance fetches the effective appearance snapshot.
func (c *Client) GetEffectiveAppearance(ctx context.Context) (*appearance.Snapshot, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodGetEffectiveAppearance, &emptypb.Empty{}, out); err != nil {
		return nil, fromStatus(err)
	}
	return snapshotFromStruct(out)
}

// ListAppearances fetches installed and well-known names.
func (c *Client) ListAppearances(ctx context.Context) (*Names, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodListAppearances, &emptypb.Empty{}, out); err != nil {
		return nil, fromStatus(err)
	}
	fields := out.GetFields()
	return &Names{
		Installed: stringList(fields["installed"]),
		Known:     stringList(fields["known"]),
	}, nil
}

// GetStatus fetches daemon status.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodGetStatus, &emptypb.Empty{}, out); err != nil {
		return nil, fromStatus(err)
	}
	fields := out.GetFields()
	return &Status{
		Version:   fields["version"].GetStringValue(),
		Hostname:  fields["hostname"].GetStringValue(),
		StartedAt: fields["started_at"].GetStringValue(),
		Uptime:    fields["uptime"].GetStringValue(),
		Installed: stringList(fields["installed"]),
	}, nil
}

// Watch calls fn for every snapshot the daemon installs until ctx is
// canceled or the stream fails. Cancellation returns nil.
func (c *Client) Watch(ctx context.Context, fn func(*appearance.Snapshot)) error {
	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], methodWatch)
	if err != nil {
		return fromStatus(err)
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return fromStatus(err)
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fromStatus(err)
		}
		snap, err := snapshotFromStruct(msg)
		if err != nil {
			return err
		}
		fn(snap)
	}
}

func stringList(v *structpb.Value) []string {
	values := v.GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, item := range values {
		out = append(out, item.GetStringValue())
	}
	return out
}
