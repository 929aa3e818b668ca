package bridge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/opencode-ai/appearances/internal/logging"
	"github.com/rs/zerolog"
)

const (
	// SnapshotExt is the file extension of snapshot files.
	SnapshotExt = ".appearance"
	// EffectiveFile names the file holding the effective appearance name.
	EffectiveFile = "effective"
)

// Directory serves snapshots from files named <appearance>.appearance in a
// directory and pushes a file's text whenever it changes. Writers should
// replace files atomically (write then rename) so partial content is never
// observed.
type Directory struct {
	dir      string
	logger   zerolog.Logger
	once     Once
	callback callbackSlot

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewDirectory creates a directory bridge rooted at dir.
func NewDirectory(dir string) *Directory {
	return &Directory{
		dir:    dir,
		logger: logging.Component("bridge.directory"),
	}
}

// Initialize implements appearance.Bridge. It fails when the directory does
// not exist or cannot be watched.
func (d *Directory) Initialize() bool {
	return d.once.Do(func() bool {
		info, err := os.Stat(d.dir)
		if err != nil {
			d.logger.Error().Err(err).Str("dir", d.dir).Msg("snapshot directory unavailable")
			return false
		}
		if !info.IsDir() {
			d.logger.Error().Str("dir", d.dir).Msg("snapshot path is not a directory")
			return false
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			d.logger.Error().Err(err).Msg("failed to create watcher")
			return false
		}
		if err := watcher.Add(d.dir); err != nil {
			_ = watcher.Close()
			d.logger.Error().Err(err).Str("dir", d.dir).Msg("failed to watch snapshot directory")
			return false
		}

		d.mu.Lock()
		d.watcher = watcher
		d.done = make(chan struct{})
		d.mu.Unlock()

		go d.watch(watcher, d.done)
		return true
	})
}

// Close stops watching the directory.
func (d *Directory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.watcher == nil {
		return nil
	}
	err := d.watcher.Close()
	<-d.done
	d.watcher = nil
	return err
}

// Path returns the snapshot file path for name.
func (d *Directory) Path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid appearance name %q", name)
	}
	return filepath.Join(d.dir, name+SnapshotExt), nil
}

// FetchSnapshotText implements appearance.Bridge.
func (d *Directory) FetchSnapshotText(ctx context.Context, name string) (string, bool) {
	path, err := d.Path(name)
	if err != nil {
		d.logger.Debug().Err(err).Msg("rejected snapshot request")
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// FetchEffectiveAppearanceName implements appearance.Bridge.
func (d *Directory) FetchEffectiveAppearanceName(ctx context.Context) (string, bool) {
	data, err := os.ReadFile(filepath.Join(d.dir, EffectiveFile))
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(string(data))
	return name, name != ""
}

// RegisterUpdateCallback implements appearance.Bridge.
func (d *Directory) RegisterUpdateCallback(callback func(string)) {
	d.callback.set(callback)
}

func (d *Directory) watch(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			d.handle(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn().Err(err).Msg("snapshot watcher error")
		}
	}
}

func (d *Directory) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if filepath.Ext(event.Name) != SnapshotExt {
		return
	}

	data, err := os.ReadFile(event.Name)
	if err != nil {
		d.logger.Debug().Err(err).Str("file", event.Name).Msg("snapshot file vanished")
		return
	}
	if len(data) == 0 {
		return
	}

	d.logger.Debug().Str("op", event.Op.String()).Str("file", event.Name).Msg("snapshot file changed")
	d.callback.emit(string(data))
}
