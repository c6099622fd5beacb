package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/snapspeak/internal/artifact"
	"github.com/dgnsrekt/snapspeak/internal/audio"
	"github.com/dgnsrekt/snapspeak/internal/cache"
	"github.com/dgnsrekt/snapspeak/internal/imaging"
	"github.com/dgnsrekt/snapspeak/internal/lang"
	"github.com/dgnsrekt/snapspeak/internal/ocr"
	"github.com/dgnsrekt/snapspeak/internal/pipeline"
	"github.com/dgnsrekt/snapspeak/internal/speech"
	"github.com/dgnsrekt/snapspeak/internal/translate"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options is the resolved configuration for a run.
type options struct {
	From   lang.Language
	To     lang.Language
	Accent lang.Accent
	Engine speech.EngineType
	Slow   bool

	Image       imaging.Options
	OCRLanguage string

	Translate bool
	Edit      bool
	ShowText  bool
	Copy      bool

	Play   bool
	Volume float64
	Speed  float64

	StorageDir    string
	RetentionDays int
}

func validateOptions() (options, error) {
	var opts options
	var err error

	if opts.From, err = lang.Lookup(viper.GetString("language.input")); err != nil {
		return opts, fmt.Errorf("invalid input language: %w", err)
	}
	if opts.To, err = lang.Lookup(viper.GetString("language.output")); err != nil {
		return opts, fmt.Errorf("invalid output language: %w", err)
	}
	if opts.To.Code == lang.Auto {
		return opts, errors.New("output language cannot be auto")
	}
	opts.Accent = lang.LookupAccent(viper.GetString("language.accent"))

	if opts.Engine, err = speech.ValidateEngineSelection(engineFlag, viper.GetString("tts.engine")); err != nil {
		return opts, err
	}
	opts.Slow = viper.GetBool("tts.slow")

	threshold := viper.GetInt("ocr.threshold")
	if threshold < 0 || threshold > 255 {
		return opts, fmt.Errorf("threshold must be between 0 and 255, got %d", threshold)
	}
	opts.Image = imaging.Options{
		Invert:    viper.GetBool("ocr.invert"),
		Grayscale: viper.GetBool("ocr.grayscale"),
		Threshold: uint8(threshold), //nolint:gosec
		MaxWidth:  viper.GetInt("ocr.max_width"),
	}
	opts.OCRLanguage = viper.GetString("ocr.language")
	if opts.OCRLanguage == "" {
		opts.OCRLanguage = opts.From.Tesseract
	}

	opts.Translate = viper.GetBool("translate.enabled") && !noTranslate
	opts.Edit = viper.GetBool("edit")
	opts.ShowText = viper.GetBool("show_text")
	opts.Copy = viper.GetBool("copy")

	opts.Play = viper.GetBool("playback.enabled") && !noPlay
	opts.Volume = viper.GetFloat64("playback.volume")
	if opts.Volume < 0 || opts.Volume > 1 {
		return opts, fmt.Errorf("playback volume must be between 0.0 and 1.0, got %.2f", opts.Volume)
	}
	opts.Speed = viper.GetFloat64("playback.speed")
	if opts.Speed != 0 && (opts.Speed < 0.5 || opts.Speed > 2.0) {
		return opts, fmt.Errorf("playback speed must be between 0.5 and 2.0, got %.2f", opts.Speed)
	}

	opts.StorageDir = expandPath(viper.GetString("storage.dir"))
	opts.RetentionDays = viper.GetInt("storage.retention_days")

	return opts, nil
}

// app ties the pipeline to the terminal.
type app struct {
	opts    options
	session *pipeline.Session

	decoder *audio.Decoder
	player  audio.AudioPlayer

	// lazily opened on first playback
	playerOnce sync.Once
	playerErr  error

	closers []func() error
}

func newApp(opts options) (*app, error) {
	cfg, err := env.ParseAs[envConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %v", err)
	}

	synth, err := speech.New(opts.Engine, speech.GTTSConfig{
		Binary:            viper.GetString("tts.binary"),
		Timeout:           viper.GetDuration("tts.timeout"),
		RequestsPerMinute: viper.GetInt("tts.requests_per_minute"),
	})
	if err != nil {
		return nil, err
	}
	if err := checkSynthesizer(synth); err != nil {
		return nil, err
	}

	a := &app{
		opts: opts,
		decoder: &audio.Decoder{
			Binary: viper.GetString("playback.ffmpeg"),
			Speed:  opts.Speed,
		},
	}

	a.session = &pipeline.Session{
		Recognizer: &ocr.Tesseract{
			Language:       opts.OCRLanguage,
			TessdataPrefix: cfg.TessdataPrefix,
		},
		Translator:  a.newTranslator(),
		Synthesizer: synth,
		Artifacts:   artifact.NewManager(opts.StorageDir),
	}

	return a, nil
}

// checkSynthesizer makes sure an engine backed by an external program can run
// before any image is read.
func checkSynthesizer(s speech.Synthesizer) error {
	v, ok := s.(interface{ Validate() error })
	if !ok {
		return nil
	}
	return v.Validate()
}

// withRetryHint tells the user when a failure is worth retrying.
func withRetryHint(err error) error {
	var serr *speech.Error
	if errors.As(err, &serr) && serr.IsRetryable() {
		return fmt.Errorf("%w (temporary, try again later)", err)
	}
	var terr *translate.Error
	if errors.As(err, &terr) && terr.Temporary() {
		return fmt.Errorf("%w (temporary, try again later)", err)
	}
	return err
}

func (a *app) newTranslator() translate.Translator {
	if !a.opts.Translate {
		return translate.Passthrough{}
	}

	var t translate.Translator = translate.NewGoogle(translate.GoogleConfig{
		Endpoint:          viper.GetString("translate.endpoint"),
		Timeout:           viper.GetDuration("translate.timeout"),
		RequestsPerMinute: viper.GetInt("translate.requests_per_minute"),
	})

	if viper.GetBool("translate.cache") {
		disk, err := openTranslationCache()
		if err != nil {
			log.Warn("translation cache disabled", "error", err)
			return t
		}
		a.closers = append(a.closers, disk.Close)
		t = &translate.Cached{
			Translator: t,
			Cache:      &cache.Tiered{L1: cache.NewMemoryCache(4 * 1024 * 1024), L2: disk},
		}
	}

	return t
}

func openTranslationCache() (*cache.DiskCache, error) {
	dir, err := gap.NewScope(gap.User, appName).CacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewDiskCache(filepath.Join(dir, "translations"), 0)
}

func (a *app) Close() error {
	var errs []error
	if a.player != nil {
		errs = append(errs, a.player.Close())
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// reap removes expired artifacts and reports failures without stopping.
func (a *app) reap(w io.Writer) {
	res := a.session.Artifacts.Reap(a.opts.RetentionDays)
	log.Debug("reaped artifacts",
		"dir", a.session.Artifacts.Dir(),
		"scanned", res.Scanned,
		"deleted", len(res.Deleted),
		"failed", len(res.Failed))
	if n := len(res.Failed); n > 0 {
		printWarning(w, fmt.Sprintf("could not delete %d old audio file(s), see the log for details", n))
	}
}

// process runs one image through the pipeline. Only a failed artifact is
// returned as an error. No text and everything after the write are warnings.
func (a *app) process(ctx context.Context, src *source, out, errOut io.Writer) error {
	ext := a.session.Extract(ctx, src.reader, a.opts.Image)
	if ext.Warning != nil {
		printWarning(errOut, fmt.Sprintf("could not read text from %s: %v", src.URL, ext.Warning))
	}

	text := ext.Text
	if a.opts.Edit {
		edited, err := editText(text)
		if err != nil {
			printWarning(errOut, err.Error())
		} else {
			text = edited
		}
	}

	art, err := a.session.Speak(ctx, pipeline.Request{
		Text: text,
		From: a.opts.From.Code,
		To:   a.opts.To.Code,
		Voice: speech.Voice{
			Language: a.opts.To.Code,
			TLD:      a.opts.Accent.TLD,
			Slow:     a.opts.Slow,
		},
	})
	if errors.Is(err, pipeline.ErrNoText) {
		printWarning(errOut, fmt.Sprintf("nothing to speak in %s", src.URL))
		return nil
	}
	if err != nil {
		return withRetryHint(err)
	}

	if a.opts.ShowText {
		printText(out, fmt.Sprintf("Original (%s)", a.opts.From.Name), text)
		printText(out, fmt.Sprintf("Translated (%s)", a.opts.To.Name), art.Text)
	}
	printSuccess(out, fmt.Sprintf("Saved %s", art.Path))

	if a.opts.Copy {
		if err := clipboard.WriteAll(art.Text); err != nil {
			printWarning(errOut, fmt.Sprintf("could not copy to clipboard: %v", err))
		}
	}

	if a.opts.Play {
		if err := a.play(ctx, art.Path); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			printWarning(errOut, fmt.Sprintf("could not play audio: %v", err))
		}
	}

	return nil
}

func (a *app) play(ctx context.Context, path string) error {
	mp3, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	pcm, err := a.decoder.DecodeMP3(ctx, mp3)
	if err != nil {
		return err
	}

	a.playerOnce.Do(func() {
		if a.player != nil {
			return
		}
		p, err := audio.NewPlayer(audio.DefaultPlayerConfig())
		if err != nil {
			a.playerErr = err
			return
		}
		_ = p.SetVolume(a.opts.Volume)
		a.player = p
	})
	if a.playerErr != nil {
		return a.playerErr
	}

	return a.player.Play(ctx, pcm)
}

func execute(cmd *cobra.Command, args []string) error {
	opts, err := validateOptions()
	if err != nil {
		return err
	}

	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	a.reap(cmd.ErrOrStderr())

	var src *source
	switch {
	case len(args) == 1:
		src, err = sourceFromArg(cmd.Context(), args[0])
	default:
		// if stdin is a pipe then use stdin for input. note that you can also
		// explicitly use a - to read from stdin.
		pipe, perr := stdinIsPipe()
		if perr != nil {
			return perr
		}
		if !pipe {
			return cmd.Help()
		}
		src, err = sourceFromArg(cmd.Context(), "-")
	}
	if err != nil {
		return err
	}
	defer src.reader.Close() //nolint:errcheck

	start := time.Now()
	err = a.process(cmd.Context(), src, cmd.OutOrStdout(), cmd.ErrOrStderr())
	log.Debug("finished", "source", src.URL, "took", time.Since(start), "err", err)
	return err
}

// isImageName reports whether a file looks like a picture worth reading.
func isImageName(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
