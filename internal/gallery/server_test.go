package gallery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/larsks/crosshairs/internal/assets"
	"github.com/larsks/crosshairs/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *Config) {
	t.Helper()
	root := t.TempDir()
	cfg := NewConfig()
	cfg.StaticRoot = filepath.Join(root, "www")
	cfg.AssetRoot = filepath.Join(root, "assets")
	cfg.ManifestDir = filepath.Join(root, "www")
	require.NoError(t, os.MkdirAll(cfg.StaticRoot, 0o755))

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	return srv, cfg
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewServer_CreatesDirectories(t *testing.T) {
	_, cfg := newTestServer(t)

	assert.DirExists(t, filepath.Join(cfg.AssetRoot, "crosshairs"))
	assert.DirExists(t, filepath.Join(cfg.AssetRoot, "scopes"))
}

func TestNewServer_Errors(t *testing.T) {
	cfg := NewConfig()
	cfg.AssetRoot = t.TempDir()

	cfg.AssetTypes = []string{"static=staticimage"}
	_, err := NewServer(cfg)
	assert.ErrorIs(t, err, ErrReservedAssetType)

	cfg.AssetTypes = []string{"geese"}
	_, err = NewServer(cfg)
	assert.ErrorIs(t, err, assets.ErrUnknownAssetType)

	blocked := filepath.Join(t.TempDir(), "file")
	writeFile(t, blocked, "")
	cfg.AssetTypes = []string{"crosshairs"}
	cfg.AssetRoot = blocked
	_, err = NewServer(cfg)
	assert.ErrorIs(t, err, ErrCreateDirectory)
}

func TestServer_IndexEmbedded(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "<title>Crosshair Gallery</title>")
	assert.Contains(t, body, `data-asset-type="crosshairs"`)
	assert.Contains(t, body, `data-asset-type="scopes"`)
}

func TestServer_IndexFromStaticRoot(t *testing.T) {
	srv, cfg := newTestServer(t)
	writeFile(t, filepath.Join(cfg.StaticRoot, "index.html"), "<html>custom</html>")

	w := get(t, srv, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>custom</html>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestServer_StaticRootFiles(t *testing.T) {
	srv, cfg := newTestServer(t)
	writeFile(t, filepath.Join(cfg.StaticRoot, "index.html"), `<script src="script.js"></script>`)
	writeFile(t, filepath.Join(cfg.StaticRoot, "script.js"), "console.log('gallery')")
	writeFile(t, filepath.Join(cfg.StaticRoot, "styles.css"), "body {}")
	writeFile(t, filepath.Join(cfg.StaticRoot, ".env"), "SECRET=1")
	writeFile(t, filepath.Join(filepath.Dir(cfg.StaticRoot), "outside.js"), "outside")

	w := get(t, srv, "/script.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log('gallery')", w.Body.String())

	w = get(t, srv, "/styles.css")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/.env").Code)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/..%2Foutside.js").Code)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/missing.js").Code)
}

func TestServer_StaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/static/gallery.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "_manifest.json")

	w = get(t, srv, "/static/nonexistent.css")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_AssetAfterRebuild(t *testing.T) {
	srv, cfg := newTestServer(t)
	dir := filepath.Join(cfg.AssetRoot, "crosshairs")
	writeFile(t, filepath.Join(dir, "b.png"), "b-bytes")
	writeFile(t, filepath.Join(dir, "a.jpg"), "a-bytes")

	registry, err := assets.NewRegistry(cfg.AssetTypes)
	require.NoError(t, err)
	crosshairs, _ := registry.Lookup("crosshairs")

	_, err = manifest.NewBuilder(cfg.AssetRoot, cfg.ManifestDir).Rebuild(crosshairs)
	require.NoError(t, err)

	w := get(t, srv, "/crosshairs/crosshair1.jpg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a-bytes", w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	w = get(t, srv, "/crosshairs/crosshair2.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b-bytes", w.Body.String())

	// The original names are gone after the rebuild.
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/crosshairs/a.jpg").Code)

	w = get(t, srv, "/crosshairs_manifest.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var m manifest.Manifest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "crosshairs", m.AssetType)
	require.Len(t, m.Assets, 2)
	assert.Equal(t, "./crosshairs/crosshair1.jpg", m.Assets[0].Path)
}

func TestServer_NotFound(t *testing.T) {
	srv, cfg := newTestServer(t)
	require.NoError(t, os.Mkdir(filepath.Join(cfg.AssetRoot, "crosshairs", "subdir"), 0o755))
	writeFile(t, filepath.Join(cfg.AssetRoot, "secret.png"), "secret")

	paths := []string{
		"/crosshairs/missing.png",
		"/crosshairs/subdir",
		"/crosshairs/..%2Fsecret.png",
		"/sounds/a.png",
		"/scopes_manifest.json",
		"/sounds_manifest.json",
		"/favicon.ico",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusNotFound, get(t, srv, path).Code)
		})
	}
}

func TestServer_Head(t *testing.T) {
	srv, cfg := newTestServer(t)
	writeFile(t, filepath.Join(cfg.AssetRoot, "scopes", "scope1.webp"), "webp-bytes")

	req := httptest.NewRequest(http.MethodHead, "/scopes/scope1.webp", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "10", w.Header().Get("Content-Length"))
}

func TestServer_CORS(t *testing.T) {
	srv, cfg := newTestServer(t)
	writeFile(t, filepath.Join(cfg.AssetRoot, "crosshairs", "crosshair1.png"), "png")

	req := httptest.NewRequest(http.MethodGet, "/crosshairs/crosshair1.png", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
