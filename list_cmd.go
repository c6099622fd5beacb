package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/snapspeak/internal/artifact"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved audio files",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m := artifact.NewManager(expandPath(viper.GetString("storage.dir")))
		artifacts, err := m.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(artifacts) == 0 {
			fmt.Fprintln(out, faint("No audio files in "+m.Dir())) //nolint:errcheck
			return nil
		}

		nameWidth := 0
		for _, a := range artifacts {
			nameWidth = max(nameWidth, lipgloss.Width(a.Name))
		}
		name := lipgloss.NewStyle().Width(nameWidth + 2).Render
		size := lipgloss.NewStyle().Width(10).Align(lipgloss.Right).Render

		for _, a := range artifacts {
			fmt.Fprintln(out, //nolint:errcheck
				name(a.Name),
				size(humanize.Bytes(uint64(a.Size))), //nolint:gosec
				faint(humanize.Time(a.ModTime)))
		}
		return nil
	},
}
