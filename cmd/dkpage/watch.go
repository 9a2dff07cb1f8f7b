package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"downloadpage/internal/app"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Reconcile a local copy of the page every time it is written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			p, err := opts.load(ctx, app.FileLoader{Path: path})
			if err != nil {
				return err
			}
			defer p.Close()
			out := cmd.OutOrStdout()
			renderPage(out, p)

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("watcher: %w", err)
			}
			defer watcher.Close()
			// Editors often replace the file, so watch its directory.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != path {
						continue
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
						continue
					}
					if err := p.Reload(ctx); err != nil {
						log.Printf("WATCH reload %s: %v", path, err)
						continue
					}
					fmt.Fprintln(out)
					renderPage(out, p)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Printf("WATCH error: %v", err)
				}
			}
		},
	}
}
