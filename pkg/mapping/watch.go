package mapping

import (
	"github.com/sanchul-dev/sanchul/pkg/debug"
	"github.com/sanchul-dev/sanchul/pkg/watcher"
)

// WatchExternal starts debounced watchers on both mapping files so edits made
// outside the process are picked up between handlers. onReload (optional)
// runs after each reload so hosts can re-verify markers. Returns a stop
// function; watch failures are logged and degrade to reload-on-demand.
func (s *Store) WatchExternal(onReload func()) func() {
	var watchers []*watcher.Watcher
	for _, path := range []string{s.originalPath, s.projectPath} {
		if path == "" {
			continue
		}
		w, err := watcher.NewWatcher(path,
			watcher.WithOnChange(func() {
				s.Reload()
				if onReload != nil {
					onReload()
				}
			}),
			watcher.WithOnError(func(err error) {
				debug.Log("mapping watcher: %v", err)
			}),
		)
		if err != nil {
			debug.Error("watching mapping file %s: %v", path, err)
			continue
		}
		if err := w.Start(); err != nil {
			debug.Error("starting mapping watcher for %s: %v", path, err)
			continue
		}
		watchers = append(watchers, w)
	}
	return func() {
		for _, w := range watchers {
			w.Stop()
		}
	}
}
