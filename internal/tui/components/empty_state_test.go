package components

import (
	"strings"
	"testing"

	"github.com/opencode-ai/appearances/internal/tui/styles"
)

func TestEmptyStateRender(t *testing.T) {
	styleSet := styles.DefaultStyles()

	t.Run("basic empty state", func(t *testing.T) {
		es := EmptyState{
			Title: "No items found",
		}
		result := es.Render(styleSet)
		if !strings.Contains(result, "No items found") {
			t.Errorf("Expected title in output, got: %s", result)
		}
	})

	t.Run("empty state with subtitle", func(t *testing.T) {
		es := EmptyState{
			Title:    "No data",
			Subtitle: "Check back later",
		}
		result := es.Render(styleSet)
		if !strings.Contains(result, "Check back later") {
			t.Errorf("Expected subtitle in output, got: %s", result)
		}
	})

	t.Run("empty state with suggestions", func(t *testing.T) {
		es := EmptyState{
			Title: "Nothing",
			Suggestions: []Suggestion{
				{Command: "appearances get", Description: "fetch one"},
			},
		}
		result := es.Render(styleSet)
		if !strings.Contains(result, "Try:") {
			t.Errorf("Expected 'Try:' header, got: %s", result)
		}
		if !strings.Contains(result, "appearances get") {
			t.Errorf("Expected command in output, got: %s", result)
		}
	})
}

func TestEmptyStateRenderCompact(t *testing.T) {
	styleSet := styles.DefaultStyles()
	es := EmptyState{
		Title: "Empty",
		Suggestions: []Suggestion{
			{Command: "r"},
		},
	}
	result := es.RenderCompact(styleSet)
	if !strings.Contains(result, "Try: r") {
		t.Errorf("Expected suggestion hint in compact output, got: %s", result)
	}
}

func TestPrebuiltEmptyStates(t *testing.T) {
	styleSet := styles.DefaultStyles()

	tests := []struct {
		name     string
		es       EmptyState
		expected []string
	}{
		{
			name:     "EmptyLoading",
			es:       EmptyLoading(),
			expected: []string{"Loading appearance"},
		},
		{
			name:     "EmptyBridgeUnavailable",
			es:       EmptyBridgeUnavailable(),
			expected: []string{"Native bridge unavailable", "bridge.kind"},
		},
		{
			name:     "EmptyAppearanceUnavailable",
			es:       EmptyAppearanceUnavailable("NSAppearanceNameVibrantDark"),
			expected: []string{"No data for NSAppearanceNameVibrantDark", "retry"},
		},
		{
			name:     "EmptyAppearanceUnavailable unnamed",
			es:       EmptyAppearanceUnavailable(""),
			expected: []string{"Appearance unavailable"},
		},
		{
			name:     "EmptyColors",
			es:       EmptyColors(),
			expected: []string{"No named colors"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.es.Render(styleSet)
			for _, exp := range tt.expected {
				if !strings.Contains(result, exp) {
					t.Errorf("Expected %q in %s output, got: %s", exp, tt.name, result)
				}
			}
		})
	}
}
