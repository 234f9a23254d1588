package main

import "github.com/charmbracelet/lipgloss"

var (
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
	countdownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	nameStyle      = lipgloss.NewStyle().Bold(true)
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
)
