package appearance

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/opencode-ai/appearances/internal/logging"
)

const (
	headerPrefix   = "Appearance: "
	highContrastID = "HighContrast"
	darkMarker     = "Dark"
)

// Parse builds a snapshot from appearance text.
//
// The first line is "Appearance: <name> [HighContrast]". Each following line
// is "<color>: <r> <g> <b> <a>". Lines that do not describe a valid color are
// skipped; only a bad header fails the parse.
func Parse(text string) (*Snapshot, error) {
	header, body, _ := strings.Cut(text, "\n")
	if header == "" {
		return nil, fmt.Errorf("%w: missing header line", ErrParse)
	}
	if !strings.HasPrefix(header, headerPrefix) {
		return nil, fmt.Errorf("%w: header must start with %q", ErrParse, headerPrefix)
	}

	var (
		name         string
		highContrast bool
	)
	for _, token := range strings.Fields(header[len(headerPrefix):]) {
		switch {
		case name == "":
			name = token
		case token == highContrastID:
			highContrast = true
		default:
			logger := logging.Component("appearance")
			logger.Debug().Str("attribute", token).Msg("unrecognized appearance attribute")
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: missing appearance name", ErrParse)
	}

	return &Snapshot{
		name:           name,
		isDark:         strings.Contains(name, darkMarker),
		isHighContrast: highContrast,
		rawText:        text,
		colors:         parseColors(body),
	}, nil
}

func parseColors(body string) map[string]Color {
	colors := make(map[string]Color)
	for _, line := range strings.Split(body, "\n") {
		pos := strings.IndexByte(line, ':')
		if pos <= 0 {
			continue
		}
		if c, ok := parseColor(line[pos+1:]); ok {
			colors[line[:pos]] = c
		}
	}
	return colors
}

func parseColor(s string) (Color, bool) {
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return Color{}, false
	}

	var channels [4]float32
	for i := range channels {
		f, err := strconv.ParseFloat(fields[i], 32)
		// Values beyond float32 come back as ±Inf with ErrRange and are
		// clamped like any other out-of-range channel.
		if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(f) {
			return Color{}, false
		}
		channels[i] = float32(f)
	}
	return NewColor(channels[0], channels[1], channels[2], channels[3]), true
}

// Format renders a snapshot in the wire format with colors in sorted order.
// Parsing the result yields a snapshot with the same name, flags and colors.
func Format(s *Snapshot) string {
	var b strings.Builder
	b.WriteString(headerPrefix)
	b.WriteString(s.name)
	if s.isHighContrast {
		b.WriteString(" ")
		b.WriteString(highContrastID)
	}
	b.WriteString("\n")
	for _, key := range s.ColorNames() {
		c := s.colors[key]
		fmt.Fprintf(&b, "%s: %s\n", key, c.String())
	}
	return b.String()
}
