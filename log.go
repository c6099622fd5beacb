package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// envConfig is read from the process environment.
type envConfig struct {
	Debug          bool   `env:"SNAPSPEAK_DEBUG"`
	LogFile        string `env:"SNAPSPEAK_LOG_FILE"`
	TessdataPrefix string `env:"TESSDATA_PREFIX"`
}

func getLogFilePath(cfg envConfig) (string, error) {
	if cfg.LogFile != "" {
		return expandPath(cfg.LogFile), nil
	}
	dir, err := gap.NewScope(gap.User, appName).CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".log"), nil
}

func setupLog() (func() error, error) {
	// Log to file only; the terminal is for results.
	log.SetOutput(io.Discard)

	cfg, err := env.ParseAs[envConfig]()
	if err != nil {
		return nil, err
	}

	logFile, err := getLogFilePath(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	log.SetOutput(f)
	log.SetReportTimestamp(true)
	log.SetLevel(log.InfoLevel)
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	return f.Close, nil
}
