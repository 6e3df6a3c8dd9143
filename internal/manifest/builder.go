// Package manifest scans asset directories, renames image files to their
// canonical names and writes the per-type JSON manifest.
package manifest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/larsks/crosshairs/internal/assets"
)

// Builder rebuilds manifests for asset types stored under a common root.
// A Builder does not guard against concurrent rebuilds of the same type.
type Builder struct {
	assetRoot   string
	manifestDir string
	foldCase    bool
	now         func() time.Time
	rename      func(oldpath, newpath string) error
	logger      *slog.Logger
}

// NewBuilder creates a Builder reading assets from assetRoot/<type> and
// writing manifests to manifestDir.
func NewBuilder(assetRoot, manifestDir string) *Builder {
	return &Builder{
		assetRoot:   assetRoot,
		manifestDir: manifestDir,
		now:         time.Now,
		rename:      os.Rename,
		logger:      slog.Default(),
	}
}

// SetFoldExtensionCase controls whether extensions such as ".PNG" are
// accepted. When disabled those files are skipped with a warning.
func (b *Builder) SetFoldExtensionCase(fold bool) {
	b.foldCase = fold
}

// Rebuild scans the directory for t, renames files to canonical names and
// overwrites the manifest. All renames are planned before any is applied,
// and the manifest is replaced atomically once every rename has succeeded.
func (b *Builder) Rebuild(t assets.Type) (*Manifest, error) {
	dir := t.Dir(b.assetRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCreateDirectory, dir, err)
	}

	paths, occupied, err := b.scan(dir)
	if err != nil {
		return nil, err
	}

	p := planRenames(t, paths, occupied)
	for _, r := range p.renames {
		from := filepath.Join(dir, r.from)
		to := filepath.Join(dir, r.to)
		if err := b.rename(from, to); err != nil {
			return nil, fmt.Errorf("%w %s -> %s: %w", ErrRenameAsset, r.from, r.to, err)
		}
		b.logger.Debug("renamed asset", "type", t.Name, "from", r.from, "to", r.to)
	}

	now := b.now().UTC()
	m := &Manifest{
		AssetType:   t.Name,
		Version:     FormatVersion,
		LastUpdated: &now,
		Assets:      p.assets,
	}

	data, err := m.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrWriteManifest, t.Name, err)
	}

	if err := os.MkdirAll(b.manifestDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCreateDirectory, b.manifestDir, err)
	}

	manifestPath := t.ManifestPath(b.manifestDir)
	if err := writeFileAtomic(manifestPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrWriteManifest, manifestPath, err)
	}

	b.logger.Info("updated manifest",
		"type", t.Name,
		"count", m.Count(),
		"renamed", len(p.renames),
		"manifest", manifestPath)

	return m, nil
}

// Load reads the current manifest for t.
func (b *Builder) Load(t assets.Type) (*Manifest, error) {
	path := t.ManifestPath(b.manifestDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrReadManifest, path, err)
	}

	m := &Manifest{AssetType: t.Name}
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecodeManifest, path, err)
	}
	return m, nil
}

// scan returns the supported image files directly inside dir, sorted by
// full path, along with the set of every name present in dir.
func (b *Builder) scan(dir string) ([]string, map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w %s: %w", ErrScanDirectory, dir, err)
	}

	var paths []string
	occupied := make(map[string]bool, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		occupied[name] = true

		// Hidden files never match, same as a shell glob.
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		ext := filepath.Ext(name)
		if assets.IsSupported(ext, b.foldCase) {
			paths = append(paths, filepath.Join(dir, name))
		} else if assets.IsSupported(ext, true) {
			b.logger.Warn("skipping image with non-lowercase extension; enable fold-extension-case to include it",
				"dir", dir, "file", name)
		}
	}

	sort.Strings(paths)
	return paths, occupied, nil
}

type rename struct {
	from string
	to   string
}

type renamePlan struct {
	renames []rename
	assets  []Asset
}

// planRenames assigns ids in path order and computes final filenames.
// occupied is updated as each rename is planned so that later conflicts
// see the directory as it will be when that rename runs.
func planRenames(t assets.Type, paths []string, occupied map[string]bool) renamePlan {
	var p renamePlan

	for i, path := range paths {
		id := i + 1
		name := filepath.Base(path)
		ext := filepath.Ext(name)

		final := t.CanonicalName(id, ext)
		if name != final {
			for counter := 1; occupied[final]; counter++ {
				final = t.ConflictName(id, counter, ext)
			}
			delete(occupied, name)
			occupied[final] = true
			p.renames = append(p.renames, rename{from: name, to: final})
		}

		p.assets = append(p.assets, Asset{
			ID:       id,
			Filename: final,
			Path:     t.URLPath(final),
		})
	}

	return p
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpPath) //nolint:errcheck
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Chmod(perm); err != nil {
		return cleanup(fmt.Errorf("chmod temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Result is the outcome of rebuilding one asset type.
type Result struct {
	Type     assets.Type
	Manifest *Manifest
	Err      error
}

// Summary collects the results of RebuildAll in configuration order.
type Summary struct {
	Results []Result
}

// Total returns the number of assets across all successful rebuilds.
func (s Summary) Total() int {
	total := 0
	for _, r := range s.Results {
		if r.Manifest != nil {
			total += r.Manifest.Count()
		}
	}
	return total
}

// RebuildAll rebuilds each type in order. A failure for one type does not
// stop the others; all failures are returned joined.
func (b *Builder) RebuildAll(types []assets.Type) (Summary, error) {
	var summary Summary
	var errs []error

	for _, t := range types {
		m, err := b.Rebuild(t)
		if err != nil {
			b.logger.Error("failed to rebuild manifest", "type", t.Name, "error", err)
			errs = append(errs, err)
		}
		summary.Results = append(summary.Results, Result{Type: t, Manifest: m, Err: err})
	}

	return summary, errors.Join(errs...)
}
