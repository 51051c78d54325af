package router

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch supplements the modification-time freshness check with native file
// change notification. The mtime check stays authoritative; the watcher just
// closes the window where two edits land inside one timestamp tick. It
// watches the source file's directory because editors commonly replace the
// file rather than write it in place.
func (r *Router) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.SourcePath())
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}
	log.Printf("Router: watching %s for rule changes", dir)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != filepath.Base(r.SourcePath()) {
					continue
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
					log.Printf("Router: rule file changed (%s), reloading", ev.Op)
					r.ForceReload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Router: watch error: %v", err)
			}
		}
	}()

	return nil
}
