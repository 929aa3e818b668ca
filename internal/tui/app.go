// Package tui implements the terminal appearance viewer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/opencode-ai/appearances/internal/tui/components"
	"github.com/opencode-ai/appearances/internal/tui/styles"
)

// Registry is the part of appearance.Registry the viewer uses.
type Registry interface {
	Effective(ctx context.Context) (*appearance.Snapshot, error)
	OnChange(fn func(appearance.ChangeEvent)) (remove func())
}

// changeBuffer is how many change events wait for the program before new
// ones are dropped. Dropping is safe: the viewer always shows the newest
// snapshot in a replacement chain and reloads the effective appearance.
const changeBuffer = 32

// Run launches the viewer and blocks until the user quits or ctx ends.
func Run(ctx context.Context, registry Registry) error {
	changes := make(chan *appearance.Snapshot, changeBuffer)
	remove := registry.OnChange(func(ev appearance.ChangeEvent) {
		select {
		case changes <- ev.Appearance:
		default:
		}
	})
	defer remove()

	program := tea.NewProgram(newModel(ctx, registry, changes), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type model struct {
	ctx      context.Context
	registry Registry
	changes  <-chan *appearance.Snapshot

	width  int
	height int
	styles styles.Styles
	view   viewID
	offset int

	snapshot *appearance.Snapshot
	err      error
	recent   []string

	lastUpdated time.Time
	now         time.Time
}

const (
	minWidth  = 50
	minHeight = 12
	maxRecent = 5
)

type viewID int

const (
	viewColors viewID = iota
	viewRaw
)

func newModel(ctx context.Context, registry Registry, changes <-chan *appearance.Snapshot) model {
	return model{
		ctx:      ctx,
		registry: registry,
		changes:  changes,
		styles:   styles.DefaultStyles(),
		view:     viewColors,
		now:      time.Now(),
	}
}

// effectiveMsg carries the result of loading the effective appearance.
type effectiveMsg struct {
	snapshot *appearance.Snapshot
	err      error
}

// changeMsg carries a snapshot installed in the registry.
type changeMsg struct {
	snapshot *appearance.Snapshot
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadEffective(), m.waitForChange(), tickCmd())
}

func (m model) loadEffective() tea.Cmd {
	return func() tea.Msg {
		s, err := m.registry.Effective(m.ctx)
		return effectiveMsg{snapshot: s, err: err}
	}
}

func (m model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.changes:
			return changeMsg{snapshot: s}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "v":
			m.view = (m.view + 1) % 2
			m.offset = 0
		case "r":
			return m, m.loadEffective()
		case "down", "j":
			m.offset = m.clampOffset(m.offset + 1)
		case "up", "k":
			m.offset = m.clampOffset(m.offset - 1)
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.offset = m.clampOffset(m.offset)
	case effectiveMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setSnapshot(msg.snapshot)
	case changeMsg:
		if msg.snapshot == nil {
			return m, nil
		}
		m.recordChange(msg.snapshot)
		if m.snapshot != nil && msg.snapshot.Name() == m.snapshot.Name() {
			m.setSnapshot(msg.snapshot)
		}
		// The effective appearance may have switched names.
		return m, tea.Batch(m.waitForChange(), m.loadEffective())
	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()
	}
	return m, nil
}

// setSnapshot shows the newest snapshot in s's replacement chain and
// restyles the viewer to match it.
func (m *model) setSnapshot(s *appearance.Snapshot) {
	if s == nil {
		return
	}
	s = s.Latest()
	m.err = nil
	if m.snapshot == s {
		return
	}
	m.snapshot = s
	m.styles = styles.FromSnapshot(s)
	m.lastUpdated = m.now
	m.offset = m.clampOffset(m.offset)
}

func (m *model) recordChange(s *appearance.Snapshot) {
	entry := fmt.Sprintf("%s  %s", m.now.Format("15:04:05"), s.Name())
	m.recent = append([]string{entry}, m.recent...)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[:maxRecent]
	}
}

func (m model) bodyRows() int {
	if m.height <= 0 {
		return 0
	}
	// Header, footer and recent changes take the rest.
	return max(1, m.height-10-len(m.recent))
}

func (m model) clampOffset(offset int) int {
	total := m.totalRows()
	visible := m.bodyRows()
	if visible == 0 {
		visible = total
	}
	limit := max(0, total-visible)
	return min(max(0, offset), limit)
}

func (m model) totalRows() int {
	if m.snapshot == nil {
		return 0
	}
	if m.view == viewRaw {
		return len(rawLines(m.snapshot))
	}
	return m.snapshot.Len()
}

func (m model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < minWidth || m.height < minHeight) {
		return joinLines(m.smallViewLines()) + "\n"
	}

	lines := []string{m.headerLine(), ""}
	lines = append(lines, m.bodyLines()...)

	if len(m.recent) > 0 {
		lines = append(lines, "", m.styles.Muted.Render("Recent changes:"))
		for _, entry := range m.recent {
			lines = append(lines, m.styles.Muted.Render("  "+entry))
		}
	}

	lines = append(lines, "", m.styles.Muted.Render(m.lastUpdatedLine()))
	lines = append(lines, m.styles.Muted.Render("Keys: tab view | j/k scroll | r reload | q quit"))
	return joinLines(lines) + "\n"
}

func (m model) headerLine() string {
	if m.snapshot == nil {
		return m.styles.Title.Render("Appearance")
	}
	return fmt.Sprintf("%s  %s",
		m.styles.Title.Render(m.snapshot.Name()),
		components.RenderAppearanceBadge(m.styles, m.snapshot))
}

func (m model) bodyLines() []string {
	switch {
	case m.err != nil && m.snapshot == nil:
		return strings.Split(m.errorState().Render(m.styles), "\n")
	case m.snapshot == nil:
		return []string{components.EmptyLoading().RenderCompact(m.styles)}
	}

	var lines []string
	if m.err != nil {
		lines = append(lines, m.styles.Warning.Render("Reload failed: "+m.err.Error()), "")
	}

	if m.view == viewRaw {
		raw := rawLines(m.snapshot)
		start := min(m.offset, len(raw))
		end := len(raw)
		if rows := m.bodyRows(); rows > 0 && start+rows < end {
			end = start + rows
		}
		for _, line := range raw[start:end] {
			lines = append(lines, m.styles.Text.Render(line))
		}
		return lines
	}

	table := components.ColorTable{Snapshot: m.snapshot, Offset: m.offset, MaxRows: m.bodyRows()}
	return append(lines, table.Render(m.styles)...)
}

func (m model) errorState() components.EmptyState {
	switch {
	case errors.Is(m.err, appearance.ErrBridgeUnavailable):
		return components.EmptyBridgeUnavailable()
	case errors.Is(m.err, appearance.ErrAppearanceUnavailable):
		return components.EmptyAppearanceUnavailable("")
	default:
		return components.EmptyState{
			Icon:     "!",
			Title:    "Unable to load appearance",
			Subtitle: m.err.Error(),
		}
	}
}

func (m model) smallViewLines() []string {
	message := fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)
	hint := fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)

	return []string{
		m.styles.Warning.Render(message),
		m.styles.Muted.Render(hint),
		m.styles.Muted.Render("Press q to quit."),
	}
}

func (m model) lastUpdatedLine() string {
	if m.lastUpdated.IsZero() {
		return "Last updated: --"
	}
	return fmt.Sprintf("Last updated: %s", m.lastUpdated.Format("15:04:05"))
}

func rawLines(s *appearance.Snapshot) []string {
	return strings.Split(strings.TrimSuffix(s.RawText(), "\n"), "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
