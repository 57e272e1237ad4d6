// Package tui renders the task in the terminal. It is a thin renderer:
// every keypress dispatches one engine action to completion and re-reads
// the projection, so no two mutations can interleave and nothing here ever
// sees the bomb before the engine reveals it.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"bret/internal/session"
	"bret/internal/trial"
)

// Cell glyphs. The grid is display-only; boxes open strictly in order via
// the open key.
const (
	glyphClosed = "·"
	glyphOpened = "■"
	glyphBomb   = "✗"
)

// Model is the bubbletea model for a live participant session.
type Model struct {
	sessions *session.Module
	cfg      trial.Config
	view     trial.View
	warning  string
	styles   Styles
	quitting bool
}

// NewModel starts a fresh trial and returns the ready model.
func NewModel(sessions *session.Module, cfg trial.Config) (Model, error) {
	v, err := sessions.Reset(cfg)
	if err != nil {
		return Model{}, err
	}
	return Model{
		sessions: sessions,
		cfg:      cfg,
		view:     v,
		styles:   DefaultStyles(),
	}, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Each action runs synchronously to
// completion before the next message is handled.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.warning = ""
	switch keyMsg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "o", " ":
		if !m.view.CanOpen() {
			m.warning = openDisabledReason(m.view)
			return m, nil
		}
		v, err := m.sessions.OpenNext()
		if err != nil {
			m.warning = err.Error()
			return m, nil
		}
		m.view = v

	case "s":
		if !m.view.CanStop() {
			m.warning = stopDisabledReason(m.view)
			return m, nil
		}
		v, err := m.sessions.Stop()
		if err != nil {
			m.warning = err.Error()
			return m, nil
		}
		m.view = v

	case "n":
		v, err := m.sessions.Reset(m.cfg)
		if err != nil {
			m.warning = err.Error()
			return m, nil
		}
		m.view = v
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Bomb Risk Elicitation Task"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("Open boxes in order. Stop whenever you like. The bomb is revealed only after you stop."))
	sb.WriteString("\n\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n\n")
	sb.WriteString(m.grid())
	sb.WriteString("\n")
	if m.warning != "" {
		sb.WriteString(m.styles.Warning.Render(m.warning))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Help.Render(m.helpLine()))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("Session: " + m.view.SessionID))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) statusLine() string {
	opened := fmt.Sprintf("Boxes opened: %d / %d", m.view.OpenedCount, m.view.BoxCount)
	if !m.view.Revealed {
		return m.styles.Status.Render(opened)
	}
	if m.view.Outcome == trial.OutcomeBombed {
		return m.styles.Bombed.Render(fmt.Sprintf(
			"Bomb was in box %d — payoff: 0", *m.view.BombIndex))
	}
	return m.styles.Safe.Render(fmt.Sprintf(
		"Safe! Bomb was in box %d — payoff: %s (%d × %s)",
		*m.view.BombIndex, m.view.Payoff, m.view.OpenedCount, m.view.PayoffPerBox))
}

// grid renders the box grid, GridColumns cells per row.
func (m Model) grid() string {
	var sb strings.Builder
	cols := m.view.GridColumns
	for i := 1; i <= m.view.BoxCount; i++ {
		state := trial.Label(m.view, i)
		cell := fmt.Sprintf("%s%3d", glyphFor(state), i)
		switch state {
		case trial.CellBomb:
			cell = m.styles.Bomb.Render(cell)
		case trial.CellOpened, trial.CellOpenedSafe:
			cell = m.styles.Opened.Render(cell)
		default:
			cell = m.styles.Closed.Render(cell)
		}
		sb.WriteString(cell)
		if i%cols == 0 || i == m.view.BoxCount {
			sb.WriteString("\n")
		} else {
			sb.WriteString("  ")
		}
	}
	return sb.String()
}

func (m Model) helpLine() string {
	if m.view.Revealed {
		return "n: new participant · q: quit"
	}
	parts := []string{}
	if m.view.CanOpen() {
		parts = append(parts, fmt.Sprintf("o/space: open box #%d", m.view.OpenedCount+1))
	}
	if m.view.CanStop() {
		parts = append(parts, "s: stop & reveal")
	}
	parts = append(parts, "n: new participant", "q: quit")
	return strings.Join(parts, " · ")
}

func glyphFor(state trial.CellState) string {
	switch state {
	case trial.CellBomb:
		return glyphBomb
	case trial.CellOpened, trial.CellOpenedSafe:
		return glyphOpened
	default:
		return glyphClosed
	}
}

func openDisabledReason(v trial.View) string {
	if v.Revealed {
		return "The trial is over — press n for a new participant."
	}
	return "All boxes are open — stop to reveal."
}

func stopDisabledReason(v trial.View) string {
	if v.Revealed {
		return "The trial is over — press n for a new participant."
	}
	return "Open at least one box before stopping."
}
