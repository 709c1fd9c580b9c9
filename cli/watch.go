package cli

import (
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const defaultDebounce = 200 * time.Millisecond

// WatchAction simulates a project and then simulates it again after every change to its file,
// until interrupted. Invalid intermediate edits are reported and skipped.
func (s *appState) WatchAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("expected exactly one project file")
	}
	target, err := filepath.Abs(c.Args().First())
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	//nolint:errcheck
	defer watcher.Close()
	// editors often replace the file instead of writing it, so watch the directory
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "watching %q", target)
	}

	out := c.App.Writer
	simulateOnce := func() {
		r, err := s.simulate(c.Context, target, outputs{})
		if err != nil {
			warningf(c.App.ErrWriter, "%v", err)
			return
		}
		printRun(out, r)
	}
	simulateOnce()
	printf(out, "watching %s for changes", target)

	debounced := debounce.New(c.Duration(flagDebounce))
	for {
		select {
		case <-c.Context.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.logger.Debugw("project changed", "file", target, "op", event.Op.String())
			debounced(simulateOnce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warnw("file watcher error", "error", err)
		}
	}
}
