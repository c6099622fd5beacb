package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/snapspeak/internal/lang"
	"github.com/spf13/cobra"
)

var langsCmd = &cobra.Command{
	Use:   "langs",
	Short: "List languages and accents",
	Long: paragraph("\nList the languages offered by default. " +
		"Any other language code Google Translate understands also works, e.g. " + keyword("--to fr") + "."),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		col := lipgloss.NewStyle().Width(12).Render

		fmt.Fprintln(out, labelStyle.Render("Languages")) //nolint:errcheck
		for _, l := range lang.Languages {
			line := col(l.Code) + col(l.Name)
			if len(l.Aliases) > 0 {
				line += faint(strings.Join(l.Aliases, ", "))
			}
			fmt.Fprintln(out, textStyle.Render(line)) //nolint:errcheck
		}

		fmt.Fprintln(out)                               //nolint:errcheck
		fmt.Fprintln(out, labelStyle.Render("Accents")) //nolint:errcheck
		for _, a := range lang.Accents {
			fmt.Fprintln(out, textStyle.Render(col(a.TLD)+a.Name)) //nolint:errcheck
		}
		return nil
	},
}
