package components

import (
	"strings"
	"testing"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/opencode-ai/appearances/internal/tui/styles"
)

func mustParse(t *testing.T, text string) *appearance.Snapshot {
	t.Helper()
	s, err := appearance.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return s
}

func TestRenderAppearanceBadge(t *testing.T) {
	styleSet := styles.DefaultStyles()

	tests := []struct {
		text string
		want []string
	}{
		{"Appearance: NSAppearanceNameAqua\n", []string{"Light"}},
		{"Appearance: NSAppearanceNameDarkAqua\n", []string{"Dark"}},
		{"Appearance: NSAppearanceNameVibrantDark HighContrast\n", []string{"Dark", "High contrast"}},
	}
	for _, tt := range tests {
		got := RenderAppearanceBadge(styleSet, mustParse(t, tt.text))
		for _, want := range tt.want {
			if !strings.Contains(got, want) {
				t.Errorf("badge %q missing %q", got, want)
			}
		}
	}
	if got := RenderAppearanceBadge(styleSet, nil); !strings.Contains(got, "-") {
		t.Errorf("nil badge = %q", got)
	}
}

func TestColorTableRender(t *testing.T) {
	styleSet := styles.DefaultStyles()
	s := mustParse(t, "Appearance: NSAppearanceNameDarkAqua\n"+
		"textColor: 1 1 1 1\n"+
		"labelColor: 1 1 1 0.5\n"+
		"controlAccentColor: 0 0.5 1 1\n")

	table := ColorTable{Snapshot: s}
	if table.Rows() != 3 {
		t.Fatalf("Rows() = %d, want 3", table.Rows())
	}
	lines := table.Render(styleSet)
	if len(lines) != 3 {
		t.Fatalf("Render() returned %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "controlAccentColor") {
		t.Errorf("first row should be controlAccentColor, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "#ffffff80") {
		t.Errorf("labelColor row should show alpha hex, got %q", lines[1])
	}

	window := ColorTable{Snapshot: s, Offset: 1, MaxRows: 1}.Render(styleSet)
	if len(window) != 1 || !strings.Contains(window[0], "labelColor") {
		t.Errorf("windowed render = %q", window)
	}

	past := ColorTable{Snapshot: s, Offset: 10}.Render(styleSet)
	if len(past) != 0 {
		t.Errorf("offset past end should render nothing, got %q", past)
	}
}

func TestColorTableEmpty(t *testing.T) {
	styleSet := styles.DefaultStyles()
	lines := ColorTable{Snapshot: mustParse(t, "Appearance: NSAppearanceNameAqua\n")}.Render(styleSet)
	if len(lines) != 1 || !strings.Contains(lines[0], "No named colors") {
		t.Errorf("empty table = %q", lines)
	}
}
