// Package scanner discovers component source documents and loads them into
// a registry.
//
// The scanner walks a components folder recursively, picks up markdown
// files, skips files matching the configured exclude globs and parses the
// rest with a bounded worker pool. Documents that are not valid components
// are skipped and counted; read failures are collected and returned as one
// joined error so a single bad file never stops a scan.
package scanner

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/logging"
	"github.com/conneroisu/partials/internal/parser"
	"github.com/conneroisu/partials/internal/registry"
	"github.com/conneroisu/partials/internal/types"
)

// syncBatchSize is the batch size at or below which files are parsed on the
// calling goroutine.
const syncBatchSize = 5

// ScanResult summarizes a directory scan.
type ScanResult struct {
	// Loaded holds the names registered, in source path order
	Loaded []string
	// Skipped holds markdown files that are not valid components
	Skipped []string
	// Excluded holds files matched by an exclude pattern
	Excluded []string
	// Failed counts files that could not be read
	Failed int
	// Duplicates maps a name to every path that declared it; the last path
	// in the list is the definition that was kept
	Duplicates map[string][]string
}

// parseJob is the outcome of parsing one file in the worker pool.
type parseJob struct {
	path string
	def  *types.Definition
	ok   bool
	err  error
}

// ComponentScanner loads component definitions from the filesystem into a
// registry.
type ComponentScanner struct {
	registry *registry.ComponentRegistry
	excludes []string
	workers  int
	logger   logging.Logger

	mu   sync.RWMutex
	root string
}

// Option configures a ComponentScanner.
type Option func(*ComponentScanner)

// WithExcludePatterns sets doublestar globs, matched against paths relative
// to the scanned folder, for files to ignore.
func WithExcludePatterns(patterns []string) Option {
	return func(s *ComponentScanner) {
		s.excludes = append([]string(nil), patterns...)
	}
}

// WithWorkers bounds the number of concurrent parsers.
func WithWorkers(n int) Option {
	return func(s *ComponentScanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the scanner's logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *ComponentScanner) {
		if logger != nil {
			s.logger = logger.WithComponent("scanner")
		}
	}
}

// NewComponentScanner creates a scanner that registers into reg.
func NewComponentScanner(reg *registry.ComponentRegistry, opts ...Option) *ComponentScanner {
	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8 // Cap at 8 workers for diminishing returns
	}

	s := &ComponentScanner{
		registry: reg,
		workers:  workerCount,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRegistry returns the component registry
func (s *ComponentScanner) GetRegistry() *registry.ComponentRegistry {
	return s.registry
}

// IsMarkdown reports whether path names a markdown document.
func IsMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// Excluded reports whether path matches an exclude pattern. Paths under the
// last scanned folder are matched relative to it.
func (s *ComponentScanner) Excluded(path string) bool {
	if len(s.excludes) == 0 {
		return false
	}

	s.mu.RLock()
	root := s.root
	s.mu.RUnlock()

	candidate := path
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			candidate = rel
		}
	}
	candidate = filepath.ToSlash(candidate)

	for _, pattern := range s.excludes {
		if ok, err := doublestar.Match(pattern, candidate); err == nil && ok {
			return true
		}
	}
	return false
}

// ScanDirectory loads every component under dir. Definitions are
// registered in source path order, so when two files declare the same name
// the later path wins. The returned error joins all read failures.
func (s *ComponentScanner) ScanDirectory(ctx context.Context, dir string) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("components folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("components folder %s is not a directory", dir)
	}

	s.mu.Lock()
	s.root = dir
	s.mu.Unlock()

	result := &ScanResult{Duplicates: make(map[string][]string)}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsMarkdown(path) {
			return nil
		}
		if s.Excluded(path) {
			result.Excluded = append(result.Excluded, path)
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	collector := errors.NewErrorCollector()
	owners := make(map[string][]string)

	for _, job := range s.processBatch(ctx, files) {
		switch {
		case job.err != nil:
			result.Failed++
			collector.Add(job.path, job.err)
			s.logger.Warn(ctx, job.err, "could not read component file", "path", job.path)
		case !job.ok:
			result.Skipped = append(result.Skipped, job.path)
			s.logger.Debug(ctx, "skipping file that is not a component", "path", job.path)
		default:
			owners[job.def.Name] = append(owners[job.def.Name], job.path)
			s.registry.Register(job.def)
			result.Loaded = append(result.Loaded, job.def.Name)
		}
	}

	for name, paths := range owners {
		if len(paths) > 1 {
			result.Duplicates[name] = paths
			s.logger.Warn(ctx, nil, "component name declared more than once", "name", name, "paths", paths)
		}
	}

	return result, collector.Join()
}

// processBatch parses files and returns the outcomes in input order.
func (s *ComponentScanner) processBatch(ctx context.Context, files []string) []parseJob {
	results := make([]parseJob, len(files))
	if len(files) == 0 {
		return results
	}

	// For very small batches, process synchronously to avoid overhead
	if len(files) <= syncBatchSize || s.workers <= 1 {
		for i, path := range files {
			results[i] = parseFile(path)
		}
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = parseFile(files[i])
			}
		}()
	}

	for i := range files {
		if ctx.Err() != nil {
			results[i] = parseJob{path: files[i], err: ctx.Err()}
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func parseFile(path string) parseJob {
	def, ok, err := parser.ParseDefinitionFile(path)
	return parseJob{path: path, def: def, ok: ok, err: err}
}

// ScanFile reloads a single file. The definition previously loaded from
// path is replaced; when the file is gone, excluded or no longer a valid
// component, definitions from path are removed and (nil, nil) is returned.
func (s *ComponentScanner) ScanFile(ctx context.Context, path string) (*types.Definition, error) {
	if s.Excluded(path) {
		s.RemoveFile(ctx, path)
		return nil, nil
	}

	def, ok, err := parser.ParseDefinitionFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			s.RemoveFile(ctx, path)
			return nil, nil
		}
		return nil, errors.NewIOError(errors.ErrCodeReadFailed, "could not read component file", err).WithPath(path)
	}
	if !ok {
		s.logger.Debug(ctx, "file is no longer a valid component", "path", path)
		s.RemoveFile(ctx, path)
		return nil, nil
	}

	// a rename in front matter leaves the old name behind
	for _, existing := range s.registry.GetAll() {
		if existing.SourcePath == path && existing.Name != def.Name {
			s.registry.Remove(existing.Name)
		}
	}

	s.registry.Register(def)
	s.logger.Debug(ctx, "loaded component", "name", def.Name, "path", path)
	return def, nil
}

// RemoveFile drops every definition loaded from path.
func (s *ComponentScanner) RemoveFile(ctx context.Context, path string) []string {
	removed := s.registry.RemoveByPath(path)
	if len(removed) > 0 {
		s.logger.Debug(ctx, "removed components", "names", removed, "path", path)
	}
	return removed
}

// RemoveDir unregisters every definition loaded from a file under dir.
func (s *ComponentScanner) RemoveDir(ctx context.Context, dir string) []string {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil
	}

	var removed []string
	for _, def := range s.registry.GetAll() {
		path, err := filepath.Abs(def.SourcePath)
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			removed = append(removed, s.RemoveFile(ctx, def.SourcePath)...)
		}
	}
	return removed
}

// SortedDuplicates returns the duplicate names of a scan in sorted order.
func (r *ScanResult) SortedDuplicates() []string {
	names := make([]string, 0, len(r.Duplicates))
	for name := range r.Duplicates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
