package main

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	salmonPink = lipgloss.Color("#FFB3BA") // failures
	mintGreen  = lipgloss.Color("#A8E6CF") // success
	amber      = lipgloss.Color("#FDE68A") // dry-run changes
	mutedGray  = lipgloss.Color("#6B7280") // secondary text
)

var (
	okStyle = lipgloss.NewStyle().
		Foreground(mintGreen).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	changeStyle = lipgloss.NewStyle().
			Foreground(amber)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	detailStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			PaddingLeft(4)
)

const (
	okMark   = "✓"
	failMark = "✗"
)
