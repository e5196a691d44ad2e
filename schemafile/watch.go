package schemafile

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
)

// Watch reloads the schema at path each time it is written or replaced and
// hands the result to fn. It blocks until ctx is done or the watcher fails.
// The containing directory is watched so editors that save by rename are
// still seen.
func Watch(ctx context.Context, path string, fn func(*schema.Model, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Load("resolve "+path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Load("create file watcher", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Load("watch "+filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			Logger().Debug("schema changed", zap.String("path", abs), zap.Stringer("op", event.Op))
			fn(Load(abs))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return errors.Load("watch "+abs, err)
		}
	}
}
