package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mdsite/logfields"
)

// Config holds server configuration
type Config struct {
	Host      string
	Port      int
	OutputDir string // rendered site served as static files

	// EnableLiveReload injects the reload script into pages and exposes the
	// /livereload websocket. LiveReload must be set when enabled.
	EnableLiveReload bool
	LiveReload       *LiveReload

	// Metrics is mounted on /metrics when non-nil.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server serves a rendered site for preview.
type Server struct {
	config Config
	mux    *http.ServeMux
	http   *http.Server
	log    *slog.Logger
}

// NewServer creates a new server instance
func NewServer(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		log:    config.Logger,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.config.LiveReload == nil {
		s.config.EnableLiveReload = false
	}
	s.setupRoutes()
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routing table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens until Stop is called.
func (s *Server) Start() error {
	s.log.Info("Listening", logfields.Addr(s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down and stops live reload.
func (s *Server) Stop(ctx context.Context) error {
	if s.config.LiveReload != nil {
		s.config.LiveReload.Stop()
	}
	return s.http.Shutdown(ctx)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	if s.config.EnableLiveReload {
		s.mux.HandleFunc("/livereload", s.config.LiveReload.HandleWebSocket)
	}
	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics)
	}
	s.mux.HandleFunc("/", s.handleRequest)
}

// handleRequest serves files from the output directory. Directories serve
// their index.html, or a listing of the pages they contain.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	requestPath := strings.TrimPrefix(r.URL.Path, "/")
	filePath := filepath.Join(s.config.OutputDir, filepath.FromSlash(requestPath))

	if !s.isValidPath(filePath) {
		http.Error(w, "Invalid path", http.StatusForbidden)
		return
	}

	info, err := os.Stat(filePath)
	if err == nil && info.IsDir() {
		if r.URL.Path != "/" && !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		index := filepath.Join(filePath, "index.html")
		if fi, err := os.Stat(index); err == nil && !fi.IsDir() {
			s.handleHTML(w, r, index)
			return
		}
		s.handleIndex(w, r, filePath)
		return
	}

	// Pretty URLs: /guide/intro -> /guide/intro.html
	if err != nil && filepath.Ext(filePath) == "" {
		if fi, err := os.Stat(filePath + ".html"); err == nil && !fi.IsDir() {
			s.handleHTML(w, r, filePath+".html")
			return
		}
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if err == nil && (ext == ".html" || ext == ".htm") {
		s.handleHTML(w, r, filePath)
		return
	}
	s.handleStaticFile(w, r, filePath)
}

// isValidPath checks if a file path is within the output directory
func (s *Server) isValidPath(filePath string) bool {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return false
	}

	absRoot, err := filepath.Abs(s.config.OutputDir)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}

	// Prevent directory traversal
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// relPath returns a path relative to the output directory, or the original path if it's outside it
func (s *Server) relPath(path string) string {
	rel, err := filepath.Rel(s.config.OutputDir, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// getContentType returns the MIME type for a file extension
func getContentType(ext string) string {
	switch ext {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".ico":
		return "image/x-icon"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
