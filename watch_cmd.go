package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// Files are read once no event has arrived for them for this long, so a
// picture still being written is not picked up half done.
const settleDelay = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Read every new picture saved to a folder",
	Long: paragraph(fmt.Sprintf("\n%s a folder, such as your screenshots folder, and read each new picture "+
		"as it appears. Pictures are handled one at a time.", keyword("Watch"))),
	Example: paragraph("snapspeak watch ~/Pictures/Screenshots --to ja"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := validateOptions()
		if err != nil {
			return err
		}

		dir := expandPath(args[0])
		st, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("unable to watch: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("%s is not a directory", args[0])
		}

		a, err := newApp(opts)
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		a.reap(cmd.ErrOrStderr())

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("error creating watcher: %w", err)
		}
		defer watcher.Close() //nolint:errcheck

		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("error watching %s: %w", dir, err)
		}
		log.Info("fsnotify watching dir", "dir", dir)

		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Watching %s, press ctrl+c to stop", dir))
		return a.watch(cmd.Context(), watcher, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// watch processes pictures as they appear until ctx is done. Errors are
// printed and the loop carries on.
func (a *app) watch(ctx context.Context, w *fsnotify.Watcher, out, errOut io.Writer) error {
	pending := make(map[string]time.Time)

	ticker := time.NewTicker(settleDelay / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isImageName(event.Name) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			pending[event.Name] = time.Now()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "error", err)

		case now := <-ticker.C:
			var ready []string
			for path, last := range pending {
				if now.Sub(last) >= settleDelay {
					ready = append(ready, path)
				}
			}
			sort.Strings(ready)

			for _, path := range ready {
				delete(pending, path)
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					continue
				}
				if err := a.processFile(ctx, path, out, errOut); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					printError(errOut, fmt.Errorf("%s: %w", path, err))
				}
			}
		}
	}
}

func (a *app) processFile(ctx context.Context, path string, out, errOut io.Writer) error {
	src, err := sourceFromArg(ctx, path)
	if err != nil {
		return err
	}
	defer src.reader.Close() //nolint:errcheck

	fmt.Fprintln(out, faint("reading "+path)) //nolint:errcheck
	return a.process(ctx, src, out, errOut)
}
