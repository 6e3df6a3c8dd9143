package gallery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/larsks/crosshairs/internal/assets"
	"github.com/larsks/crosshairs/internal/static"
)

const manifestSuffix = "_manifest.json"

// Server serves the gallery page, asset files and manifests.
type Server struct {
	config   *Config
	registry *assets.Registry
	router   *chi.Mux
}

// NewServer creates a gallery server. Asset directories that do not exist
// yet are created empty.
func NewServer(cfg *Config) (*Server, error) {
	registry, err := assets.NewRegistry(cfg.AssetTypes)
	if err != nil {
		return nil, err
	}

	for _, t := range registry.Types() {
		if t.Name == "static" {
			return nil, fmt.Errorf("%w: %q", ErrReservedAssetType, t.Name)
		}

		dir := t.Dir(cfg.AssetRoot)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrCreateDirectory, dir, err)
		}
	}

	s := &Server{
		config:   cfg,
		registry: registry,
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router = chi.NewRouter()

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.GetHead)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	staticFS := http.FileServer(http.FS(static.GetAssets()))

	s.router.Get("/", s.handleIndex)
	s.router.Handle("/static/*", http.StripPrefix("/static/", staticFS))
	// Both routes share the first parameter name so they share a tree node.
	s.router.Get("/{name}", s.handleTopLevel)
	s.router.Get("/{name}/{filename}", s.handleAsset)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the server's router
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleIndex serves index.html from the static root, or the embedded
// gallery page when there is none.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	f, info, err := openRegular(s.config.StaticRoot, "index.html")
	if err == nil {
		defer f.Close() //nolint:errcheck
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
		return
	}
	if !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to open index.html; using embedded page", "static_root", s.config.StaticRoot, "error", err)
	}

	names := make([]string, 0)
	for _, t := range s.registry.Types() {
		names = append(names, t.Name)
	}

	page, err := static.RenderIndex(static.IndexData{
		Title:      s.config.Title,
		AssetTypes: names,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to render index: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page) //nolint:errcheck
}

// handleTopLevel serves <type>_manifest.json for known asset types. Any
// other top-level name is looked up in the static root, which holds the
// page's own script and stylesheet.
func (s *Server) handleTopLevel(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	if typeName, ok := strings.CutSuffix(name, manifestSuffix); ok {
		if t, ok := s.registry.Lookup(typeName); ok {
			serveFile(w, r, s.config.ManifestDir, t.ManifestFile())
			return
		}
	}

	s.serveStaticRoot(w, r, name)
}

// serveStaticRoot serves name from the static root. Hidden files are never
// served.
func (s *Server) serveStaticRoot(w http.ResponseWriter, r *http.Request, name string) {
	if strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}

	serveFile(w, r, s.config.StaticRoot, name)
}

// handleAsset serves a single file from an asset type's directory.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	t, ok := s.registry.Lookup(urlParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	serveFile(w, r, t.Dir(s.config.AssetRoot), urlParam(r, "filename"))
}

// urlParam returns a decoded route parameter. chi matches against the raw
// path when the request contains escaped separators.
func urlParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return ""
	}
	return decoded
}

func serveFile(w http.ResponseWriter, r *http.Request, dir, name string) {
	f, info, err := openRegular(dir, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to open file", "dir", dir, "name", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close() //nolint:errcheck

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// openRegular opens name directly inside dir. Names containing path
// separators and directories are reported as fs.ErrNotExist.
func openRegular(dir, name string) (*os.File, fs.FileInfo, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || !fs.ValidPath(name) {
		return nil, nil, fs.ErrNotExist
	}

	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close() //nolint:errcheck
		return nil, nil, fs.ErrNotExist
	}

	return f, info, nil
}
