// Package server serves a rendered document with live reload.
//
// The preview server loads the components folder, renders the target
// document on every request and pushes a reload message over a websocket
// whenever a component definition or the document itself changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/conneroisu/partials/internal/config"
	"github.com/conneroisu/partials/internal/document"
	"github.com/conneroisu/partials/internal/logging"
	"github.com/conneroisu/partials/internal/registry"
	"github.com/conneroisu/partials/internal/renderer"
	"github.com/conneroisu/partials/internal/scanner"
	"github.com/conneroisu/partials/internal/types"
	"github.com/conneroisu/partials/internal/watcher"
)

// debounceDelay groups editor save bursts into one reload.
const debounceDelay = 150 * time.Millisecond

// PreviewServer serves a document with live reload capability
type PreviewServer struct {
	config      *config.Config
	document    string
	registry    *registry.ComponentRegistry
	scanner     *scanner.ComponentScanner
	processor   *document.Processor
	hub         *Hub
	logger      logging.Logger
	httpServer  *http.Server
	serverMutex sync.RWMutex

	watcher      *watcher.FileWatcher
	shutdownOnce sync.Once
}

// Option configures a PreviewServer.
type Option func(*PreviewServer)

// WithLogger sets the server's logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *PreviewServer) {
		if logger != nil {
			s.logger = logger.WithComponent("server")
		}
	}
}

// WithRegistry shares an existing registry instead of creating one.
func WithRegistry(reg *registry.ComponentRegistry) Option {
	return func(s *PreviewServer) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// New creates a preview server for cfg. The first of cfg.TargetFiles is the
// document served at "/"; with no target the index lists every component.
func New(cfg *config.Config, opts ...Option) *PreviewServer {
	s := &PreviewServer{
		config: cfg,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = registry.NewComponentRegistry()
	}
	if len(cfg.TargetFiles) > 0 {
		s.document = cfg.TargetFiles[0]
	}

	s.hub = NewHub(s.logger)
	s.scanner = scanner.NewComponentScanner(s.registry,
		scanner.WithExcludePatterns(cfg.Components.ExcludePatterns),
		scanner.WithLogger(s.logger),
	)
	s.processor = document.NewProcessor(s.registry,
		document.WithRenderOptions(cfg.RenderOptions()),
		document.WithComponentsFolder(cfg.Components.Folder),
		document.WithLogger(s.logger),
		document.WithRenderer(renderer.New(
			renderer.WithLogger(s.logger),
			renderer.WithScriptTimeout(cfg.Render.ScriptTimeout),
		)),
	)
	return s
}

// Registry returns the server's component registry.
func (s *PreviewServer) Registry() *registry.ComponentRegistry {
	return s.registry
}

// Hub returns the live reload hub.
func (s *PreviewServer) Hub() *Hub {
	return s.hub
}

// Handler returns the server's routes.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /components", s.handleComponents)
	mux.HandleFunc("GET /component/{name}", s.handleComponent)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return s.logRequests(mux)
}

// Start loads components, starts watching and serves until ctx is done or
// Shutdown is called.
func (s *PreviewServer) Start(ctx context.Context) error {
	result, err := s.scanner.ScanDirectory(ctx, s.config.Components.Folder)
	if err != nil && result == nil {
		return fmt.Errorf("loading components: %w", err)
	}
	if err != nil {
		s.logger.Warn(ctx, err, "some component files could not be read")
	}
	s.logger.Info(ctx, "loaded components", "count", s.registry.Count())

	go s.hub.Run(ctx)
	go s.forwardRegistryEvents(ctx)

	if s.config.Development.LiveReload {
		if err := s.startWatcher(ctx); err != nil {
			s.logger.Warn(ctx, err, "live reload disabled")
		}
	}

	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Address(), err)
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	url := "http://" + listener.Addr().String()
	s.logger.Info(ctx, "preview server listening", "url", url)
	if s.config.Server.Open {
		go s.openBrowser(ctx, url)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and cleans up resources
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.watcher != nil {
			_ = s.watcher.Stop()
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

func (s *PreviewServer) startWatcher(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(debounceDelay, s.logger)
	if err != nil {
		return err
	}

	folder := s.config.Components.Folder
	fw.AddFilter(watcher.MarkdownFilter)
	fw.AddFilter(watcher.NoTempFilter)
	fw.AddFilter(watcher.AnyOf(
		watcher.PathFilter(s.document),
		func(path string) bool { return watcher.NoHiddenFilter(path) && inside(folder, path) },
	))
	fw.AddHandler(s.handleFileChange)

	if err := fw.AddRecursive(folder); err != nil {
		_ = fw.Stop()
		return err
	}
	if s.document != "" {
		// editors replace files on save, so watch the directory
		if err := fw.AddPath(filepath.Dir(s.document)); err != nil {
			_ = fw.Stop()
			return err
		}
	}

	s.watcher = fw
	return fw.Start(ctx)
}

// handleFileChange reloads changed component files. Registry updates
// reach the browser through forwardRegistryEvents; a changed document is
// broadcast directly.
func (s *PreviewServer) handleFileChange(ctx context.Context, events []watcher.ChangeEvent) error {
	documentChanged := false

	for _, event := range events {
		if event.Dir {
			s.scanner.RemoveDir(ctx, event.Path)
			continue
		}
		if s.document != "" && samePath(event.Path, s.document) {
			documentChanged = true
			continue
		}

		if event.Gone() {
			s.scanner.RemoveFile(ctx, event.Path)
			continue
		}
		if _, err := s.scanner.ScanFile(ctx, event.Path); err != nil {
			s.logger.Warn(ctx, err, "could not reload component", "path", event.Path)
			s.hub.Broadcast(UpdateMessage{Type: MessageError, Target: event.Path, Content: err.Error()})
		}
	}

	if documentChanged {
		s.hub.Broadcast(UpdateMessage{Type: MessageReload, Target: s.document})
	}
	return nil
}

func (s *PreviewServer) forwardRegistryEvents(ctx context.Context) {
	events := s.registry.Watch()
	defer s.registry.UnWatch(events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.logger.Debug(ctx, "component changed", "type", string(event.Type), "name", event.Definition.Name)
			s.hub.Broadcast(UpdateMessage{Type: MessageReload, Target: event.Definition.Name})
		}
	}
}

func (s *PreviewServer) logRequests(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}

func (s *PreviewServer) openBrowser(ctx context.Context, url string) {
	time.Sleep(100 * time.Millisecond) // Give server time to start

	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}

	if err != nil {
		s.logger.Warn(ctx, err, "could not open browser")
	}
}

func inside(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel)
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && rel[2] == filepath.Separator
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// componentView is the JSON shape of a definition served by the API.
type componentView struct {
	*types.Definition
	Snippet string `json:"snippet"`
}
