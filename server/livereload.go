package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"

	"mdsite/logfields"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin
		return true
	},
}

// RebuildFunc regenerates the site after a source change.
type RebuildFunc func() error

// LiveReloadConfig configures a LiveReload.
type LiveReloadConfig struct {
	// Dirs are watched recursively; Files are watched individually.
	Dirs  []string
	Files []string
	// Ignore lists directories whose events are dropped, typically the
	// output directory when it sits inside a watched directory.
	Ignore   []string
	Rebuild  RebuildFunc
	Debounce time.Duration
	Logger   *slog.Logger
}

// LiveReload rebuilds the site when watched files change and tells
// connected browsers to reload.
type LiveReload struct {
	cfg       LiveReloadConfig
	watcher   *fsnotify.Watcher
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex
	broadcast chan []byte
	stopChan  chan struct{}
	stopOnce  sync.Once
	log       *slog.Logger
	rebuilds  chan error
}

// NewLiveReload creates a new LiveReload instance
func NewLiveReload(cfg LiveReloadConfig) (*LiveReload, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	cfg.Dirs = absPaths(cfg.Dirs)
	cfg.Files = absPaths(cfg.Files)
	cfg.Ignore = absPaths(cfg.Ignore)

	lr := &LiveReload{
		cfg:       cfg,
		watcher:   watcher,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 256),
		stopChan:  make(chan struct{}),
		log:       log,
		rebuilds:  make(chan error, 16),
	}

	return lr, nil
}

func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}

// Start begins watching for file changes
func (lr *LiveReload) Start() error {
	for _, dir := range lr.cfg.Dirs {
		if err := lr.watchDirectory(dir); err != nil {
			return err
		}
	}
	for _, f := range lr.cfg.Files {
		if err := lr.watcher.Add(filepath.Dir(f)); err != nil {
			return err
		}
	}

	go lr.watchFiles()
	go lr.broadcastMessages()

	return nil
}

// Rebuilds delivers the result of each rebuild, dropping results nobody reads.
func (lr *LiveReload) Rebuilds() <-chan error {
	return lr.rebuilds
}

// watchDirectory recursively watches a directory and its subdirectories
func (lr *LiveReload) watchDirectory(dir string) error {
	if lr.ignored(dir) {
		return nil
	}
	if err := lr.watcher.Add(dir); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		if err := lr.watchDirectory(sub); err != nil {
			lr.log.Warn("LiveReload: cannot watch directory", logfields.Path(sub), logfields.Error(err))
		}
	}
	return nil
}

func (lr *LiveReload) ignored(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	for _, dir := range lr.cfg.Ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// relevant reports whether an event should trigger a rebuild: anything
// inside a watched directory that is not hidden or ignored, and the
// individually watched files.
func (lr *LiveReload) relevant(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") || lr.ignored(name) {
		return false
	}
	clean := filepath.Clean(name)
	for _, f := range lr.cfg.Files {
		if filepath.Clean(f) == clean {
			return true
		}
	}
	for _, dir := range lr.cfg.Dirs {
		if rel, err := filepath.Rel(dir, clean); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// watchFiles monitors file system events, debounces them and runs one
// rebuild at a time.
func (lr *LiveReload) watchFiles() {
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-lr.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !strings.HasPrefix(filepath.Base(event.Name), ".") {
					if err := lr.watchDirectory(event.Name); err != nil {
						lr.log.Warn("LiveReload: cannot watch directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			if event.Op == fsnotify.Chmod || !lr.relevant(event.Name) {
				continue
			}
			lr.log.Debug("LiveReload: change detected", logfields.Path(event.Name), logfields.Event(event.Op.String()))
			pending = time.After(lr.cfg.Debounce)
		case <-pending:
			pending = nil
			lr.rebuild()
		case err, ok := <-lr.watcher.Errors:
			if !ok {
				return
			}
			lr.log.Warn("LiveReload: watcher error", logfields.Error(err))
		case <-lr.stopChan:
			return
		}
	}
}

func (lr *LiveReload) rebuild() {
	var err error
	if lr.cfg.Rebuild != nil {
		err = lr.cfg.Rebuild()
	}
	if err != nil {
		lr.log.Error("LiveReload: rebuild failed", logfields.Error(err))
	} else {
		lr.Notify()
	}
	select {
	case lr.rebuilds <- err:
	default:
	}
}

// Notify asks every connected browser to reload.
func (lr *LiveReload) Notify() {
	select {
	case lr.broadcast <- []byte("reload"):
	case <-lr.stopChan:
	}
}

// ClientCount returns the number of connected browsers.
func (lr *LiveReload) ClientCount() int {
	lr.clientsMu.RLock()
	defer lr.clientsMu.RUnlock()
	return len(lr.clients)
}

// broadcastMessages sends messages to all connected clients
func (lr *LiveReload) broadcastMessages() {
	for {
		select {
		case message := <-lr.broadcast:
			var failed []*websocket.Conn
			lr.clientsMu.RLock()
			for client := range lr.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					lr.log.Debug("LiveReload: error writing to client", logfields.Error(err))
					failed = append(failed, client)
				}
			}
			lr.clientsMu.RUnlock()
			if len(failed) > 0 {
				lr.clientsMu.Lock()
				for _, client := range failed {
					delete(lr.clients, client)
					client.Close()
				}
				lr.clientsMu.Unlock()
			}
		case <-lr.stopChan:
			return
		}
	}
}

// HandleWebSocket handles WebSocket connections for live reload
func (lr *LiveReload) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	lr.clientsMu.Lock()
	lr.clients[conn] = true
	count := len(lr.clients)
	lr.clientsMu.Unlock()
	lr.log.Debug("LiveReload: client connected", logfields.Clients(count))

	go func() {
		defer func() {
			lr.clientsMu.Lock()
			delete(lr.clients, conn)
			lr.clientsMu.Unlock()
			conn.Close()
		}()

		// Read loop to detect disconnection
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// Stop stops the file watcher and closes all connections
func (lr *LiveReload) Stop() {
	lr.stopOnce.Do(func() {
		close(lr.stopChan)
		lr.watcher.Close()

		lr.clientsMu.Lock()
		for client := range lr.clients {
			client.Close()
		}
		lr.clients = make(map[*websocket.Conn]bool)
		lr.clientsMu.Unlock()

		lr.log.Info("LiveReload: stopped")
	})
}
