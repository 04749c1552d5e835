package app

import (
	"context"
	"fmt"
	"strings"

	"go.trai.ch/xs/internal/adapters/document"
	"go.trai.ch/xs/internal/adapters/watcher"
	"go.trai.ch/zerr"
)

// watch loads the page, then reloads it on every change of the watched files.
// Load failures are logged and never stop the loop.
func (a *App) watch(ctx context.Context, p *page) error {
	paths := p.watchedPaths()
	if len(paths) == 0 {
		return zerr.With(zerr.New("watch mode needs a document file"), "document", p.opts.Document)
	}

	w, err := watcher.NewWatcher(a.logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()
	for _, path := range paths {
		if err := w.Add(path); err != nil {
			return err
		}
	}

	changes := make(chan []string, 1)
	d := watcher.NewDebouncer(watchWindow, func(paths []string) {
		select {
		case changes <- paths:
		default:
		}
	})

	go func() {
		_ = w.Run(ctx, d)
	}()

	a.reload(ctx, p)
	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-changes:
			a.logger.Info(fmt.Sprintf("changed: %s, reloading", strings.Join(changed, ", ")))
			a.reload(ctx, p)
		}
	}
}

func (a *App) reload(ctx context.Context, p *page) {
	if err := p.run(ctx); err != nil {
		a.logger.Error(err)
	}
	if p.opts.Metrics {
		if err := a.metrics.Write(a.stderr); err != nil {
			a.logger.Error(err)
		}
	}
}

func (p *page) watchedPaths() []string {
	var paths []string
	doc := p.opts.Document
	if doc != document.StdinLocation && !strings.HasPrefix(doc, "http://") && !strings.HasPrefix(doc, "https://") {
		paths = append(paths, doc)
	}
	if len(paths) > 0 && p.settings.ImportMapFile != "" {
		paths = append(paths, p.settings.ImportMapFile)
	}
	return paths
}
