package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/conneroisu/partials/internal/config"
	"github.com/conneroisu/partials/internal/document"
	"github.com/conneroisu/partials/internal/logging"
	"github.com/conneroisu/partials/internal/registry"
	"github.com/conneroisu/partials/internal/renderer"
	"github.com/conneroisu/partials/internal/scanner"
	"github.com/conneroisu/partials/internal/types"
)

// workspace is what most commands need: configuration, a logger and the
// loaded components.
type workspace struct {
	cfg      *config.Config
	logger   logging.Logger
	registry *registry.ComponentRegistry
	scanner  *scanner.ComponentScanner
	result   *scanner.ScanResult
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, output io.Writer) logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}

	loggerCfg := logging.DefaultConfig()
	loggerCfg.Level = level
	loggerCfg.Format = cfg.Log.Format
	if output != nil {
		loggerCfg.Output = output
	}
	return logging.NewLogger(loggerCfg)
}

// openWorkspace loads configuration and scans the components folder. Files
// that could not be read are logged; a missing folder is an error.
func openWorkspace(ctx context.Context, errOut io.Writer) (*workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	logger := newLogger(cfg, errOut)

	reg := registry.NewComponentRegistry()
	scan := scanner.NewComponentScanner(reg,
		scanner.WithExcludePatterns(cfg.Components.ExcludePatterns),
		scanner.WithLogger(logger),
	)

	result, err := scan.ScanDirectory(ctx, cfg.Components.Folder)
	if result == nil {
		return nil, fmt.Errorf("failed to load components: %w (run 'partials init' to create the folder)", err)
	}
	if err != nil {
		logger.Warn(ctx, err, "some component files could not be read")
	}
	logger.Debug(ctx, "loaded components", "count", reg.Count(), "folder", cfg.Components.Folder)

	return &workspace{cfg: cfg, logger: logger, registry: reg, scanner: scan, result: result}, nil
}

func (w *workspace) renderer() *renderer.Renderer {
	return renderer.New(
		renderer.WithLogger(w.logger),
		renderer.WithScriptTimeout(w.cfg.Render.ScriptTimeout),
	)
}

func (w *workspace) processor(opts types.RenderOptions) *document.Processor {
	return document.NewProcessor(w.registry,
		document.WithRenderOptions(opts),
		document.WithComponentsFolder(w.cfg.Components.Folder),
		document.WithLogger(w.logger),
		document.WithRenderer(w.renderer()),
	)
}
