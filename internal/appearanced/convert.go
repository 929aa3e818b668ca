package appearanced

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencode-ai/appearances/internal/appearance"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// snapshotToStruct renders a snapshot for the wire. raw_text is authoritative;
// the decoded fields are there for clients that do not parse the text format.
func snapshotToStruct(s *appearance.Snapshot) (*structpb.Struct, error) {
	colors := make(map[string]any, s.Len())
	for name, c := range s.Colors() {
		colors[name] = map[string]any{
			"r":   float64(c.R),
			"g":   float64(c.G),
			"b":   float64(c.B),
			"a":   float64(c.A),
			"hex": c.HexAlpha(),
		}
	}
	return structpb.NewStruct(map[string]any{
		"name":          s.Name(),
		"dark":          s.IsDark(),
		"high_contrast": s.IsHighContrast(),
		"valid":         s.IsValid(),
		"raw_text":      s.RawText(),
		"colors":        colors,
	})
}

// snapshotFromStruct reparses the raw text carried in a wire snapshot.
func snapshotFromStruct(st *structpb.Struct) (*appearance.Snapshot, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: empty response", appearance.ErrParse)
	}
	raw, ok := st.GetFields()["raw_text"]
	if !ok {
		return nil, fmt.Errorf("%w: response has no raw_text", appearance.ErrParse)
	}
	return appearance.Parse(raw.GetStringValue())
}

// toStatus maps registry errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, appearance.ErrAppearanceUnavailable):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, appearance.ErrBridgeUnavailable):
		// Unavailable is left to the transport.
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, appearance.ErrParse):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// fromStatus maps gRPC codes back onto registry errors so callers can use
// errors.Is regardless of transport.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", appearance.ErrAppearanceUnavailable, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", appearance.ErrBridgeUnavailable, st.Message())
	case codes.DataLoss:
		return fmt.Errorf("%w: %s", appearance.ErrParse, st.Message())
	default:
		return err
	}
}
