// Package assets describes the asset types the gallery serves and the
// naming rules shared by the server and the manifest builder.
package assets

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultTypes are the asset types used when none are configured.
var DefaultTypes = []string{"crosshairs", "scopes"}

// knownSingulars maps plural asset type names to their singular form.
// Types not listed here must be configured as "plural=singular".
var knownSingulars = map[string]string{
	"crosshairs": "crosshair",
	"scopes":     "scope",
	"reticles":   "reticle",
	"sights":     "sight",
}

// SupportedExtensions lists the image extensions picked up by a scan.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Type is one category of served image.
type Type struct {
	// Name is the plural name used for the directory, URL prefix and manifest key
	Name string
	// Singular is the filename prefix for canonical names
	Singular string
}

// ParseType parses "plural" or "plural=singular".
func ParseType(spec string) (Type, error) {
	name, singular, explicit := strings.Cut(strings.TrimSpace(spec), "=")
	name = strings.TrimSpace(name)
	singular = strings.TrimSpace(singular)

	if !namePattern.MatchString(name) {
		return Type{}, fmt.Errorf("%w: %q", ErrInvalidAssetType, spec)
	}

	if !explicit {
		var ok bool
		if singular, ok = knownSingulars[name]; !ok {
			return Type{}, fmt.Errorf("%w: %q (configure it as %s=<singular>)", ErrUnknownAssetType, name, name)
		}
	}

	if !namePattern.MatchString(singular) {
		return Type{}, fmt.Errorf("%w: singular %q for %q", ErrInvalidAssetType, singular, name)
	}

	return Type{Name: name, Singular: singular}, nil
}

// Dir returns the directory holding this type's files under root.
func (t Type) Dir(root string) string {
	return filepath.Join(root, t.Name)
}

// ManifestFile returns the manifest filename, e.g. "crosshairs_manifest.json".
func (t Type) ManifestFile() string {
	return t.Name + "_manifest.json"
}

// ManifestPath returns the manifest location under dir.
func (t Type) ManifestPath(dir string) string {
	return filepath.Join(dir, t.ManifestFile())
}

// CanonicalName returns "{singular}{id}{ext}" with ext lowercased.
func (t Type) CanonicalName(id int, ext string) string {
	return t.Singular + strconv.Itoa(id) + strings.ToLower(ext)
}

// ConflictName returns "{singular}{id}_{counter}{ext}" with ext lowercased.
func (t Type) ConflictName(id, counter int, ext string) string {
	return t.Singular + strconv.Itoa(id) + "_" + strconv.Itoa(counter) + strings.ToLower(ext)
}

// URLPath returns the manifest path for filename, e.g. "./crosshairs/crosshair1.png".
func (t Type) URLPath(filename string) string {
	return "./" + t.Name + "/" + filename
}

// IsSupported reports whether ext is a supported image extension. Matching
// is exact unless foldCase is set.
func IsSupported(ext string, foldCase bool) bool {
	for _, supported := range SupportedExtensions {
		if ext == supported || (foldCase && strings.EqualFold(ext, supported)) {
			return true
		}
	}
	return false
}

// Registry is an ordered set of asset types.
type Registry struct {
	types  []Type
	byName map[string]Type
}

// NewRegistry parses specs into a registry, preserving order.
func NewRegistry(specs []string) (*Registry, error) {
	if len(specs) == 0 {
		return nil, ErrNoAssetTypes
	}

	r := &Registry{byName: make(map[string]Type, len(specs))}
	for _, spec := range specs {
		t, err := ParseType(spec)
		if err != nil {
			return nil, err
		}
		if _, exists := r.byName[t.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAssetType, t.Name)
		}
		r.byName[t.Name] = t
		r.types = append(r.types, t)
	}

	return r, nil
}

// Types returns the registered types in configuration order.
func (r *Registry) Types() []Type {
	types := make([]Type, len(r.types))
	copy(types, r.types)
	return types
}

// Lookup returns the type with the given plural name.
func (r *Registry) Lookup(name string) (Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}
