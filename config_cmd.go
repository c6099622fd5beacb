package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# Languages: a name (English, Mandarin) or a code (en, zh-cn, fr).
language:
  # language of the text in pictures, or "auto" to detect
  input: "en"
  # language to speak
  output: "es"
  # voice accent: com, co.in, co.uk, ca, com.au, ie, co.za
  accent: "com"

# Where audio files are kept, and for how long.
storage:
  dir: "temp"
  retention_days: 7

# Text recognition (tesseract)
ocr:
  # traineddata to use, e.g. "eng" or "jpn+eng" (default derived from language.input)
  language: ""
  # for light text on a dark background
  invert: false
  grayscale: false
  # binarize at this luminance (1-255), 0 to disable
  threshold: 0
  # downscale wider pictures, 0 to disable
  max_width: 0

# Speech synthesis
tts:
  # gtts or mock
  engine: "gtts"
  binary: "gtts-cli"
  slow: false
  timeout: "30s"
  requests_per_minute: 50

# Translation (Google Translate)
translate:
  enabled: true
  # endpoint: "https://translate.googleapis.com/translate_a/single"
  timeout: "10s"
  requests_per_minute: 60
  # remember translations between runs
  cache: true

# Audio playback (needs ffmpeg)
playback:
  enabled: true
  # 0.0 to 1.0
  volume: 1.0
  # 0.5 to 2.0
  speed: 1.0
  ffmpeg: "ffmpeg"

# print the recognized and translated text
show_text: true
# edit the recognized text in $EDITOR before speaking
edit: false
# copy the translated text to the clipboard
copy: false
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the snapspeak config file",
	Long:    paragraph(fmt.Sprintf("\n%s the snapspeak config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("snapspeak config\nsnapspeak config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("snapspeak", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
