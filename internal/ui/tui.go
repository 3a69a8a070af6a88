// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the node status view
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI program. The caller pushes StatusMsg updates via
// Program.Send and runs the program on its own goroutine.
func Run() (*tea.Program, error) {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	return p, nil
}
