package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/snapspeak/internal/artifact"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cleanDays int

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old audio files",
	Long: paragraph(fmt.Sprintf("\n%s audio files older than the retention period. "+
		"This also runs every time a picture is read.", keyword("Delete"))),
	Example: paragraph("snapspeak clean\nsnapspeak clean --days 0"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		days := viper.GetInt("storage.retention_days")
		if cmd.Flags().Changed("days") {
			days = cleanDays
		}

		m := artifact.NewManager(expandPath(viper.GetString("storage.dir")))
		res := m.Reap(days)

		out := cmd.OutOrStdout()
		for _, path := range res.Deleted {
			fmt.Fprintln(out, faint("deleted"), path) //nolint:errcheck
		}
		for path, err := range res.Failed {
			printWarning(cmd.ErrOrStderr(), fmt.Sprintf("%s: %v", path, err))
		}
		printSuccess(out, fmt.Sprintf("Deleted %d of %d audio files in %s", len(res.Deleted), res.Scanned, m.Dir()))

		if disk, err := openTranslationCache(); err == nil {
			n := disk.Prune(time.Duration(days) * 24 * time.Hour)
			_ = disk.Close()
			log.Debug("pruned translation cache", "removed", n)
		}

		return nil
	},
}

func init() {
	cleanCmd.Flags().IntVar(&cleanDays, "days", 0, "delete files older than this many days (default storage.retention_days)")
}
