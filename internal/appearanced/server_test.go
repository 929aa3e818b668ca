package appearanced

import (
	"context"
	"errors"
	"testing"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/opencode-ai/appearances/internal/bridge"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	darkText  = "Appearance: NSAppearanceNameDarkAqua\nlabelColor: 1 1 1 0.85\n"
	aquaText  = "Appearance: NSAppearanceNameAqua\nlabelColor: 0 0 0 0.85\n"
	brokenRaw = "not an appearance"
)

func newMemoryBridge() *bridge.Memory {
	mem := bridge.NewMemory()
	mem.Set(appearance.DarkAqua, darkText)
	mem.Set(appearance.Aqua, aquaText)
	mem.SetEffective(appearance.DarkAqua)
	return mem
}

func newTestRegistry(t *testing.T) (*appearance.Registry, *bridge.Memory) {
	t.Helper()
	mem := newMemoryBridge()
	return appearance.NewRegistry(mem, nil, appearance.WithLogger(zerolog.Nop())), mem
}

func TestServerGetAppearance(t *testing.T) {
	registry, _ := newTestRegistry(t)
	server := NewServer(registry, zerolog.Nop())

	resp, err := server.GetAppearance(context.Background(), wrapperspb.String(appearance.DarkAqua))
	if err != nil {
		t.Fatalf("GetAppearance() error = %v", err)
	}
	fields := resp.GetFields()
	if got := fields["name"].GetStringValue(); got != appearance.DarkAqua {
		t.Errorf("name = %q, want %q", got, appearance.DarkAqua)
	}
	if !fields["dark"].GetBoolValue() {
		t.Error("dark should be true")
	}
	if got := fields["raw_text"].GetStringValue(); got != darkText {
		t.Errorf("raw_text = %q, want %q", got, darkText)
	}
	label := fields["colors"].GetStructValue().GetFields()["labelColor"].GetStructValue().GetFields()
	if got := label["hex"].GetStringValue(); got != "#ffffffd9" {
		t.Errorf("labelColor hex = %q, want %q", got, "#ffffffd9")
	}
}

func TestServerGetAppearanceErrors(t *testing.T) {
	registry, mem := newTestRegistry(t)
	mem.Set(appearance.VibrantDark, brokenRaw)
	server := NewServer(registry, zerolog.Nop())

	tests := []struct {
		name string
		req  string
		want codes.Code
	}{
		{name: "empty name", req: "  ", want: codes.InvalidArgument},
		{name: "unknown appearance", req: "NSAppearanceNameMissing", want: codes.NotFound},
		{name: "unparseable data", req: appearance.VibrantDark, want: codes.DataLoss},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := server.GetAppearance(context.Background(), wrapperspb.String(tt.req))
			if got := status.Code(err); got != tt.want {
				t.Fatalf("code = %v, want %v (err = %v)", got, tt.want, err)
			}
		})
	}
}

func TestServerBridgeUnavailable(t *testing.T) {
	mem := bridge.NewMemory()
	mem.FailInit()
	registry := appearance.NewRegistry(mem, nil, appearance.WithLogger(zerolog.Nop()))
	server := NewServer(registry, zerolog.Nop())

	_, err := server.GetEffectiveAppearance(context.Background(), &emptypb.Empty{})
	if got := status.Code(err); got != codes.FailedPrecondition {
		t.Fatalf("code = %v, want %v", got, codes.FailedPrecondition)
	}
	if !errors.Is(fromStatus(err), appearance.ErrBridgeUnavailable) {
		t.Fatalf("fromStatus(%v) should wrap ErrBridgeUnavailable", err)
	}
}

func TestServerGetEffectiveAppearance(t *testing.T) {
	registry, _ := newTestRegistry(t)
	server := NewServer(registry, zerolog.Nop())

	resp, err := server.GetEffectiveAppearance(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("GetEffectiveAppearance() error = %v", err)
	}
	if got := resp.GetFields()["name"].GetStringValue(); got != appearance.DarkAqua {
		t.Errorf("name = %q, want %q", got, appearance.DarkAqua)
	}
}

func TestServerListAndStatus(t *testing.T) {
	registry, _ := newTestRegistry(t)
	server := NewServer(registry, zerolog.Nop(), WithVersion("test-version"))

	if _, err := registry.Get(context.Background(), appearance.Aqua); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	list, err := server.ListAppearances(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("ListAppearances() error = %v", err)
	}
	installed := stringList(list.GetFields()["installed"])
	if len(installed) != 1 || installed[0] != appearance.Aqua {
		t.Errorf("installed = %v, want [%s]", installed, appearance.Aqua)
	}
	if known := stringList(list.GetFields()["known"]); len(known) != 4 {
		t.Errorf("known count = %d, want 4", len(known))
	}

	st, err := server.GetStatus(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if got := st.GetFields()["version"].GetStringValue(); got != "test-version" {
		t.Errorf("version = %q, want %q", got, "test-version")
	}
}

func TestToStatusRoundTrip(t *testing.T) {
	for _, sentinel := range []error{
		appearance.ErrAppearanceUnavailable,
		appearance.ErrBridgeUnavailable,
		appearance.ErrParse,
	} {
		if got := fromStatus(toStatus(sentinel)); !errors.Is(got, sentinel) {
			t.Errorf("fromStatus(toStatus(%v)) = %v", sentinel, got)
		}
	}
	if code := status.Code(toStatus(context.Canceled)); code != codes.Canceled {
		t.Errorf("canceled code = %v, want %v", code, codes.Canceled)
	}
	if code := status.Code(toStatus(context.DeadlineExceeded)); code != codes.DeadlineExceeded {
		t.Errorf("deadline code = %v, want %v", code, codes.DeadlineExceeded)
	}
	if code := status.Code(toStatus(errors.New("boom"))); code != codes.Internal {
		t.Errorf("code = %v, want %v", code, codes.Internal)
	}
}
