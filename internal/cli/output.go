package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/opencode-ai/appearances/internal/appearance"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was given.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// WriteOutput writes v as indented JSON, or as one compact line with --jsonl.
func WriteOutput(out io.Writer, v any) error {
	if IsJSONLOutput() {
		return writeJSONLine(out, v)
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeJSONLine(out io.Writer, v any) error {
	return json.NewEncoder(out).Encode(v)
}

func colorEnabled() bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return stdoutIsTTY()
}

func colorize(text, color string) string {
	if !colorEnabled() || color == "" {
		return text
	}
	return color + text + colorReset
}

// SnapshotView is the JSON form of a snapshot.
type SnapshotView struct {
	Name         string               `json:"name"`
	Dark         bool                 `json:"dark"`
	HighContrast bool                 `json:"high_contrast"`
	Valid        bool                 `json:"valid"`
	Colors       map[string]ColorView `json:"colors"`
	RawText      string               `json:"raw_text"`
	ReceivedAt   *time.Time           `json:"received_at,omitempty"`
}

// ColorView is the JSON form of one color.
type ColorView struct {
	R   float32 `json:"r"`
	G   float32 `json:"g"`
	B   float32 `json:"b"`
	A   float32 `json:"a"`
	Hex string  `json:"hex"`
}

func newSnapshotView(s *appearance.Snapshot) SnapshotView {
	colors := make(map[string]ColorView, s.Len())
	for name, c := range s.Colors() {
		colors[name] = ColorView{R: c.R, G: c.G, B: c.B, A: c.A, Hex: c.HexAlpha()}
	}
	return SnapshotView{
		Name:         s.Name(),
		Dark:         s.IsDark(),
		HighContrast: s.IsHighContrast(),
		Valid:        s.IsValid(),
		Colors:       colors,
		RawText:      s.RawText(),
	}
}

func printError(out io.Writer, err error) {
	fmt.Fprintln(out, colorize("error: "+err.Error(), colorRed))
}
