// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the run progress display
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the progress TUI. The caller drives it with Send and waits
// for the program to finish after sending a DoneMsg.
func Run(endpoint, region string, clients, target int) *tea.Program {
	return tea.NewProgram(NewModel(endpoint, region, clients, target))
}
