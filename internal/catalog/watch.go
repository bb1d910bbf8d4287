package catalog

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// DefaultDebounce collapses editor save bursts into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports catalog changes under a games directory. Every directory
// in the tree is watched (fsnotify is not recursive) and directories created
// later are added as they appear.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	clock    clockwork.Clock
	onChange func(path string) // called with the last path that changed

	mu       sync.Mutex
	debounce time.Duration
	pending  clockwork.Timer
	last     string

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for root.
func NewWatcher(root string, clock clockwork.Clock, onChange func(string)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  w,
		root:     root,
		clock:    clock,
		onChange: onChange,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
	}, nil
}

// WatchLoader returns a watcher that invalidates l whenever its games
// directory changes.
func WatchLoader(l *Loader, clock clockwork.Clock) (*Watcher, error) {
	return NewWatcher(l.Paths().GamesDir(), clock, func(path string) {
		l.Invalidate()
		log.Printf("[watcher] catalog cache invalidated after change to %s", path)
	})
}

// SetDebounce sets the quiet period before onChange fires.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Start begins watching in a goroutine.
func (w *Watcher) Start() error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	log.Printf("[watcher] watching %s", w.root)

	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop terminates the watcher. A pending notification is dropped.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.mu.Unlock()
	log.Println("[watcher] stopped")
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				log.Printf("[watcher] can't watch %s: %v", event.Name, err)
			}
			w.schedule(event.Name)
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !isCatalogFile(event.Name) {
		return
	}
	w.schedule(event.Name)
}

// schedule (re)starts the debounce timer; only the last path of a burst is
// reported.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = path
	if w.pending != nil {
		w.pending.Reset(w.debounce)
		return
	}
	w.pending = w.clock.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	path := w.last
	w.pending = nil
	w.mu.Unlock()

	log.Printf("[watcher] catalog changed: %s", path)
	if w.onChange != nil {
		w.onChange(path)
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

func isCatalogFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
