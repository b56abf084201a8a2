package poller

import (
	"path/filepath"
	"regexp"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"warnsync/internal/feed"
)

// defaultSettle lets a producer finish writing before the tick reads the file.
const defaultSettle = 2 * time.Second

var dayDir = regexp.MustCompile(`^\d{8}$`)

// watcher turns bursts of filesystem events under the feed root into single
// ticks on C. It watches the root and the dated directories created below it.
type watcher struct {
	C      <-chan struct{}
	fs     *fsnotify.Watcher
	log    logrus.FieldLogger
	done   chan struct{}
	closed chan struct{}
}

func newWatcher(root string, settle time.Duration, log logrus.FieldLogger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, err
	}
	if day, _ := feed.LatestPublishedDirectory(root); day != "" {
		if err := fw.Add(filepath.Join(root, day)); err != nil {
			log.WithError(err).Warn("cannot watch publication directory")
		}
	}

	c := make(chan struct{}, 1)
	w := &watcher{C: c, fs: fw, log: log, done: make(chan struct{}), closed: make(chan struct{})}
	go w.loop(c, settle)
	return w, nil
}

func (w *watcher) loop(c chan<- struct{}, settle time.Duration) {
	defer close(w.closed)
	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-w.done:
			timer.Stop()
			return
		case evt, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if evt.Has(fsnotify.Create) && dayDir.MatchString(filepath.Base(evt.Name)) {
				if err := w.fs.Add(evt.Name); err != nil {
					w.log.WithError(err).WithField("dir", evt.Name).Debug("cannot watch directory")
				}
			}
			if evt.Has(fsnotify.Create) || evt.Has(fsnotify.Write) || evt.Has(fsnotify.Rename) {
				timer.Reset(settle)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("filesystem watch error")
		case <-timer.C:
			select {
			case c <- struct{}{}:
			default:
			}
		}
	}
}

func (w *watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	<-w.closed
	return err
}
