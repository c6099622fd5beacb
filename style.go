package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render
	faint     = lipgloss.NewStyle().Faint(true).Render

	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB86C"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	textStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

func printWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render("Warning:"), msg) //nolint:errcheck
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error:"), err) //nolint:errcheck
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✓"), msg) //nolint:errcheck
}

func printText(w io.Writer, label, text string) {
	fmt.Fprintln(w, labelStyle.Render(label)) //nolint:errcheck
	fmt.Fprintln(w, textStyle.Render(text))   //nolint:errcheck
}
