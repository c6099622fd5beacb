// Package main provides the entry point for the snapspeak CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "snapspeak"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	engineFlag  string
	noTranslate bool
	noPlay      bool

	rootCmd = &cobra.Command{
		Use:   "snapspeak [IMAGE]",
		Short: "Read the text in a picture out loud, in another language",
		Long: paragraph(
			fmt.Sprintf("\nRead the text in a picture %s, in the language of your choice.", keyword("out loud")),
		),
		Example: paragraph("snapspeak menu.jpg --to es\n" +
			"snapspeak https://example.com/sign.png --from ja --to en --accent co.uk\n" +
			"grim -g \"$(slurp)\" - | snapspeak --edit"),
		SilenceErrors:    true,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: execute,
	}
)

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	_ = closer()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	cobra.OnInitialize(loadConfigFlag)

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringP("from", "f", "", "language of the text in the picture (name or code, \"auto\" to detect)")
	flags.StringP("to", "t", "", "language to speak (name or code)")
	flags.StringP("accent", "a", "", "voice accent as a Google domain, e.g. co.uk or com.au")
	flags.StringVarP(&engineFlag, "engine", "e", "", "speech engine (gtts, mock)")
	flags.Bool("slow", false, "speak slowly")
	flags.Bool("invert", false, "invert colors before OCR, for light text on a dark background")
	flags.Bool("grayscale", false, "convert to grayscale before OCR")
	flags.Uint8("threshold", 0, "binarize at this luminance (1-255) before OCR, 0 to disable")
	flags.String("ocr-lang", "", "tesseract language data, e.g. eng or jpn+eng (default derived from --from)")
	flags.Bool("edit", false, "edit the recognized text in $EDITOR before speaking")
	flags.BoolVar(&noTranslate, "no-translate", false, "speak the recognized text as is")
	flags.BoolVar(&noPlay, "no-play", false, "only save the audio file")
	flags.Bool("show-text", true, "print the recognized and translated text")
	flags.Bool("copy", false, "copy the translated text to the clipboard")
	flags.StringP("storage-dir", "d", "", "directory for audio files")
	flags.Int("retention-days", 0, "delete audio files older than this many days")

	// Config bindings
	_ = viper.BindPFlag("language.input", flags.Lookup("from"))
	_ = viper.BindPFlag("language.output", flags.Lookup("to"))
	_ = viper.BindPFlag("language.accent", flags.Lookup("accent"))
	_ = viper.BindPFlag("tts.slow", flags.Lookup("slow"))
	_ = viper.BindPFlag("ocr.invert", flags.Lookup("invert"))
	_ = viper.BindPFlag("ocr.grayscale", flags.Lookup("grayscale"))
	_ = viper.BindPFlag("ocr.threshold", flags.Lookup("threshold"))
	_ = viper.BindPFlag("ocr.language", flags.Lookup("ocr-lang"))
	_ = viper.BindPFlag("edit", flags.Lookup("edit"))
	_ = viper.BindPFlag("show_text", flags.Lookup("show-text"))
	_ = viper.BindPFlag("copy", flags.Lookup("copy"))
	_ = viper.BindPFlag("storage.dir", flags.Lookup("storage-dir"))
	_ = viper.BindPFlag("storage.retention_days", flags.Lookup("retention-days"))

	setDefaults()

	rootCmd.AddCommand(configCmd, manCmd, cleanCmd, listCmd, watchCmd, langsCmd)
}

func setDefaults() {
	viper.SetDefault("language.input", "en")
	viper.SetDefault("language.output", "es")
	viper.SetDefault("language.accent", "com")

	viper.SetDefault("storage.dir", "temp")
	viper.SetDefault("storage.retention_days", 7)

	viper.SetDefault("ocr.language", "")
	viper.SetDefault("ocr.invert", false)
	viper.SetDefault("ocr.grayscale", false)
	viper.SetDefault("ocr.threshold", 0)
	viper.SetDefault("ocr.max_width", 0)

	viper.SetDefault("tts.engine", "gtts")
	viper.SetDefault("tts.binary", "gtts-cli")
	viper.SetDefault("tts.slow", false)
	viper.SetDefault("tts.timeout", "30s")
	viper.SetDefault("tts.requests_per_minute", 50)

	viper.SetDefault("translate.enabled", true)
	viper.SetDefault("translate.endpoint", "")
	viper.SetDefault("translate.timeout", "10s")
	viper.SetDefault("translate.requests_per_minute", 60)
	viper.SetDefault("translate.cache", true)

	viper.SetDefault("playback.enabled", true)
	viper.SetDefault("playback.volume", 1.0)
	viper.SetDefault("playback.speed", 1.0)
	viper.SetDefault("playback.ffmpeg", "ffmpeg")

	viper.SetDefault("show_text", true)
	viper.SetDefault("edit", false)
	viper.SetDefault("copy", false)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("SNAPSPEAK_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], appName+".yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

// loadConfigFlag reads the file given with --config, if any.
func loadConfigFlag() {
	if !rootCmd.PersistentFlags().Changed("config") {
		return
	}
	viper.SetConfigFile(expandPath(configFile))
	if err := viper.ReadInConfig(); err != nil {
		log.Warn("Could not read configuration file", "path", configFile, "err", err)
		return
	}
	log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
}
