// Package watch resyncs messages when the telephony provider database changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.smsync/internal/model"
)

const DefaultDebounce = 500 * time.Millisecond

type Syncer interface {
	Sync(ctx context.Context) (*model.SyncResult, error)
}

type watcher struct {
	fs       *fsnotify.Watcher
	syncer   Syncer
	name     string
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	syncs   sync.WaitGroup
	running sync.WaitGroup
}

// Provider watches the directory of providerPath and runs a sync once writes to
// the database, or its journal and wal files, settle for debounce.
func Provider(ctx context.Context, providerPath string, syncer Syncer, debounce time.Duration) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := fs.Add(filepath.Dir(providerPath)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watching %s: %w", providerPath, err)
	}

	w := &watcher{
		fs:       fs,
		syncer:   syncer,
		name:     filepath.Base(providerPath),
		debounce: debounce,
	}

	w.running.Add(1)
	go w.loop(ctx)

	return w, nil
}

func (w *watcher) loop(ctx context.Context) {
	defer w.running.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule(ctx)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher: %+v", err)
		}
	}
}

func (w *watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(event.Name), w.name)
}

func (w *watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.syncs.Add(1)
		w.mu.Unlock()
		defer w.syncs.Done()

		w.sync(ctx)
	})
}

func (w *watcher) sync(ctx context.Context) {
	result, err := w.syncer.Sync(ctx)
	if err != nil {
		if errors.Is(err, model.ErrorSyncInProgress) {
			log.Infof("provider changed during a sync, skipping")
			return
		}
		log.Errorf("syncing after provider change: %+v", err)
		return
	}
	log.Infof("provider changed, synced %d messages", result.Messages)
}

// Close stops watching and waits for a sync already started by the watcher.
func (w *watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fs.Close()
	w.running.Wait()
	w.syncs.Wait()
	return err
}
