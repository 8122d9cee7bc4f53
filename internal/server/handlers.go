package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/partials/internal/document"
	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/parser"
	"github.com/conneroisu/partials/internal/version"
)

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	title := "Components"
	var source []byte

	if s.document != "" {
		content, err := os.ReadFile(s.document)
		if err != nil {
			s.logger.Error(r.Context(), err, "could not read document", "path", s.document)
			http.Error(w, "could not read document", http.StatusInternalServerError)
			return
		}
		title = strings.TrimSuffix(filepath.Base(s.document), filepath.Ext(s.document))
		source = content
	} else {
		source = s.catalog()
	}

	var body bytes.Buffer
	stats, err := s.processor.Render(r.Context(), &body, source)
	if err != nil {
		s.logger.Error(r.Context(), err, "could not render document", "path", s.document)
		http.Error(w, "could not render document", http.StatusInternalServerError)
		return
	}
	s.logger.Debug(r.Context(), "rendered document", "components", stats.Rendered, "failed", stats.Failed)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := document.Page(title, body.Bytes(), s.config.Development.LiveReload)
	if err := page.Render(r.Context(), w); err != nil {
		s.logger.Warn(r.Context(), err, "could not write page")
	}
}

// catalog builds a markdown document previewing every component with its
// default props.
func (s *PreviewServer) catalog() []byte {
	var b strings.Builder
	b.WriteString("# Components\n\n")

	defs := s.registry.GetAll()
	if len(defs) == 0 {
		fmt.Fprintf(&b, "No components found in `%s`.\n", s.config.Components.Folder)
		return []byte(b.String())
	}

	for _, def := range defs {
		fmt.Fprintf(&b, "## %s\n\n", def.Name)
		if def.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", def.Description)
		}
		b.WriteString(parser.FenceSnippet(def))
		b.WriteString("\n\n")
	}
	return []byte(b.String())
}

func (s *PreviewServer) handleComponents(w http.ResponseWriter, r *http.Request) {
	defs := s.registry.GetAll()
	views := make([]componentView, 0, len(defs))
	for _, def := range defs {
		views = append(views, componentView{Definition: def, Snippet: parser.FenceSnippet(def)})
	}

	s.writeJSON(w, r, http.StatusOK, views)
}

func (s *PreviewServer) handleComponent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	def, ok := s.registry.Get(name)
	if !ok {
		lookup := errors.NewLookupError(name, s.registry.Names(), s.config.Components.Folder)
		s.writeJSON(w, r, http.StatusNotFound, map[string]interface{}{
			"error":       lookup.Error(),
			"suggestions": lookup.Suggestions,
		})
		return
	}

	s.writeJSON(w, r, http.StatusOK, componentView{Definition: def, Snippet: parser.FenceSnippet(def)})
}

// handleHealth returns the server health status for health checks
func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"version":    version.GetShortVersion(),
		"components": s.registry.Count(),
		"clients":    s.hub.ClientCount(),
	}

	s.writeJSON(w, r, http.StatusOK, health)
}

func (s *PreviewServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), err, "failed to encode response", "path", r.URL.Path)
	}
}
