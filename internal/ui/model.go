// ABOUTME: Bubbletea model for the node status view
// ABOUTME: Renders sync state, beacon counters, and boot info
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusMsg carries a status update into the TUI.
type StatusMsg struct {
	NodeName    string
	Destination string
	SyncStatus  string
	OffsetUs    int64
	RTTUs       int64
	Sent        int64
	Failed      int64
	LastPayload string
	BootCount   int
}

// Model represents the TUI state.
type Model struct {
	nodeName    string
	destination string

	// Sync
	syncStatus string
	offsetUs   int64
	rttUs      int64

	// Beacon
	sent        int64
	failed      int64
	lastPayload string

	bootCount int

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	return Model{syncStatus: "unsynchronized"}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// applyStatus copies a status update into the model.
func (m *Model) applyStatus(msg StatusMsg) {
	m.nodeName = msg.NodeName
	m.destination = msg.Destination
	m.syncStatus = msg.SyncStatus
	m.offsetUs = msg.OffsetUs
	m.rttUs = msg.RTTUs
	m.sent = msg.Sent
	m.failed = msg.Failed
	m.lastPayload = msg.LastPayload
	m.bootCount = msg.BootCount
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderBeacon()
	s += m.renderHelp()
	return s
}

// renderHeader renders node identity and sync status.
func (m Model) renderHeader() string {
	syncIcon := "✗"
	syncText := "Unsynchronized"
	switch m.syncStatus {
	case "synchronized":
		syncIcon = "✓"
		syncText = fmt.Sprintf("Synced (offset: %+.1fms, rtt: %.1fms)",
			float64(m.offsetUs)/1000.0, float64(m.rttUs)/1000.0)
	case "timed_out":
		syncIcon = "⚠"
		syncText = "Timed out (clock may be wrong)"
	}

	return fmt.Sprintf(`┌─ Beacontime Node ────────────────────────────────────┐
│ Node:   %-45s │
│ Boot:   #%-44d │
│ Sync:   %s %-42s │
├──────────────────────────────────────────────────────┤
`, truncate(m.nodeName, 45), m.bootCount, syncIcon, syncText)
}

// renderBeacon renders beacon destination and counters.
func (m Model) renderBeacon() string {
	return fmt.Sprintf(`│ Target: %-45s │
│ Last:   %-45s │
│ Stats:  Sent: %d  Failed: %d%-21s │
`, truncate(m.destination, 45), truncate(m.lastPayload, 45), m.sent, m.failed, "")
}

// renderHelp renders keyboard shortcuts.
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ q:Quit                                               │
└──────────────────────────────────────────────────────┘
`
}

// truncate shortens a string to max characters
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
