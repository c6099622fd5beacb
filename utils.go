package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/editor"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/term"
)

// expandPath expands tilde and all environment variables from the given path.
func expandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// editText opens text in the user's editor and returns the saved result.
func editText(text string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec
		return "", errors.New("editing needs an interactive terminal")
	}

	dir, err := os.MkdirTemp("", appName+"-edit-*")
	if err != nil {
		return "", fmt.Errorf("unable to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	path := filepath.Join(dir, "text.txt")
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("unable to write temp file: %w", err)
	}

	c, err := editor.Cmd("snapspeak", path)
	if err != nil {
		return "", fmt.Errorf("unable to open editor: %w", err)
	}
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("unable to run command: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read edited text: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
