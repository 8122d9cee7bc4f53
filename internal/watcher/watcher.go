// Package watcher reports changes to component source documents and the
// documents that use them, grouped into debounced batches.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/partials/internal/logging"
)

// FileWatcher watches for file changes with debouncing
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	filters   []FileFilter
	handlers  []ChangeHandler
	logger    logging.Logger
	dirs      map[string]bool
	mutex     sync.RWMutex
	stopOnce  sync.Once
	stopErr   error
}

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
	// Dir marks the removal of a watched directory; files inside it get
	// no events of their own.
	Dir bool
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Gone reports whether the path no longer exists after this event.
func (e ChangeEvent) Gone() bool {
	return e.Type == EventTypeDeleted || e.Type == EventTypeRenamed
}

// FileFilter determines if a file should be watched
type FileFilter func(path string) bool

// ChangeHandler handles a debounced batch of change events
type ChangeHandler func(ctx context.Context, events []ChangeEvent) error

// Debouncer groups rapid file changes together
type Debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &FileWatcher{
		watcher:   watcher,
		debouncer: newDebouncer(debounceDelay),
		filters:   make([]FileFilter, 0),
		handlers:  make([]ChangeHandler, 0),
		dirs:      make(map[string]bool),
		logger:    logger.WithComponent("watcher"),
	}, nil
}

func newDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}
}

// AddFilter adds a file filter. An event is kept only if every filter
// accepts its path.
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath adds a file or directory to watch
func (fw *FileWatcher) AddPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	return fw.watcher.Add(filepath.Clean(path))
}

// AddRecursive adds a directory and all subdirectories to watch. Hidden
// directories below root are skipped.
func (fw *FileWatcher) AddRecursive(root string) error {
	return filepath.WalkDir(filepath.Clean(root), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != filepath.Clean(root) && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return err
		}
		fw.mutex.Lock()
		fw.dirs[path] = true
		fw.mutex.Unlock()
		return nil
	})
}

// forgetDir drops path and everything below it from the watched
// directories, reporting whether path was one of them.
func (fw *FileWatcher) forgetDir(path string) bool {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)

	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	if !fw.dirs[path] {
		return false
	}
	for dir := range fw.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(fw.dirs, dir)
		}
	}
	return true
}

func (fw *FileWatcher) accepts(path string) bool {
	fw.mutex.RLock()
	filters := fw.filters
	fw.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func (fw *FileWatcher) emit(ctx context.Context, event ChangeEvent) {
	select {
	case fw.debouncer.events <- event:
	default:
		fw.logger.Debug(ctx, "dropping change event, debouncer is full", "path", event.Path)
	}
}

// emitExisting reports files already inside a directory that appeared
// after watching began, e.g. one moved into place.
func (fw *FileWatcher) emitExisting(ctx context.Context, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !fw.accepts(path) {
			return nil
		}
		event := ChangeEvent{Type: EventTypeCreated, Path: path}
		if info, err := d.Info(); err == nil {
			event.ModTime = info.ModTime()
			event.Size = info.Size()
		}
		fw.emit(ctx, event)
		return nil
	})
}

// Start starts the file watcher
func (fw *FileWatcher) Start(ctx context.Context) error {
	go fw.debouncer.start(ctx)
	go fw.processEvents(ctx)
	go fw.watchLoop(ctx)

	return nil
}

// Stop stops the file watcher and cleans up resources. It is safe to call
// more than once.
func (fw *FileWatcher) Stop() error {
	fw.stopOnce.Do(func() {
		fw.debouncer.stop()
		fw.stopErr = fw.watcher.Close()
	})
	return fw.stopErr
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "file watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) {
	info, statErr := os.Stat(event.Name)

	// new directories are watched before filtering so files created in
	// them later are seen
	if event.Op.Has(fsnotify.Create) && statErr == nil && info.IsDir() {
		if strings.HasPrefix(filepath.Base(event.Name), ".") {
			return
		}
		if err := fw.AddRecursive(event.Name); err != nil {
			fw.logger.Warn(ctx, err, "could not watch new directory", "path", event.Name)
		}
		fw.emitExisting(ctx, event.Name)
		return
	}

	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		if fw.forgetDir(event.Name) {
			eventType := EventTypeDeleted
			if !event.Op.Has(fsnotify.Remove) {
				eventType = EventTypeRenamed
			}
			fw.emit(ctx, ChangeEvent{Type: eventType, Path: event.Name, Dir: true})
			return
		}
	}

	if !fw.accepts(event.Name) {
		return
	}

	var modTime time.Time
	var size int64
	if statErr == nil {
		modTime = info.ModTime()
		size = info.Size()
	}

	var eventType EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		eventType = EventTypeCreated
	case event.Op.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Op.Has(fsnotify.Remove):
		eventType = EventTypeDeleted
	case event.Op.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeModified
	}

	fw.emit(ctx, ChangeEvent{
		Type:    eventType,
		Path:    event.Name,
		ModTime: modTime,
		Size:    size,
	})
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.debouncer.output:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			for _, handler := range handlers {
				if err := handler(ctx, events); err != nil {
					fw.logger.Error(ctx, err, "file watcher handler failed", "events", len(events))
				}
			}
		}
	}
}

func (d *Debouncer) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.stop()
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *Debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) addEvent(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	events := Coalesce(d.pending)

	select {
	case d.output <- events:
	default:
		// Channel full, skip
	}

	d.pending = d.pending[:0]
}

// Coalesce keeps the latest event for each path, ordered by each path's
// first appearance.
func Coalesce(pending []ChangeEvent) []ChangeEvent {
	index := make(map[string]int, len(pending))
	events := make([]ChangeEvent, 0, len(pending))
	for _, event := range pending {
		if i, seen := index[event.Path]; seen {
			events[i] = event
			continue
		}
		index[event.Path] = len(events)
		events = append(events, event)
	}
	return events
}

// MarkdownFilter accepts markdown documents.
func MarkdownFilter(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// NoHiddenFilter rejects paths with a dot-prefixed segment, such as editor
// swap files and .git contents.
func NoHiddenFilter(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if len(segment) > 1 && strings.HasPrefix(segment, ".") && segment != ".." {
			return false
		}
	}
	return true
}

// NoTempFilter rejects editor backup and temporary files.
func NoTempFilter(path string) bool {
	base := filepath.Base(path)
	return !strings.HasSuffix(base, "~") && !strings.HasSuffix(base, ".swp") && !strings.HasPrefix(base, "#")
}

// ExcludeFilter rejects paths matching any doublestar pattern, evaluated
// relative to root.
func ExcludeFilter(root string, patterns []string) FileFilter {
	return func(path string) bool {
		candidate := path
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			candidate = rel
		}
		candidate = filepath.ToSlash(candidate)
		for _, pattern := range patterns {
			if ok, err := doublestar.Match(pattern, candidate); err == nil && ok {
				return false
			}
		}
		return true
	}
}

// AnyOf accepts a path when at least one filter does.
func AnyOf(filters ...FileFilter) FileFilter {
	return func(path string) bool {
		for _, f := range filters {
			if f(path) {
				return true
			}
		}
		return false
	}
}

// PathFilter accepts exactly the given files.
func PathFilter(paths ...string) FileFilter {
	wanted := make(map[string]bool, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			wanted[abs] = true
		}
	}
	return func(path string) bool {
		abs, err := filepath.Abs(path)
		return err == nil && wanted[abs]
	}
}

// UnderFilter accepts paths inside root.
func UnderFilter(root string) FileFilter {
	absRoot, err := filepath.Abs(root)
	return func(path string) bool {
		if err != nil {
			return false
		}
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return false
		}
		rel, relErr := filepath.Rel(absRoot, abs)
		return relErr == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
	}
}

// AllOf accepts a path when every filter does.
func AllOf(filters ...FileFilter) FileFilter {
	return func(path string) bool {
		for _, f := range filters {
			if !f(path) {
				return false
			}
		}
		return true
	}
}
