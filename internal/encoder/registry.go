package encoder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// priority is the order formats are listed and chosen as fallback.
var priority = []string{"png", "jpeg", "gif", "bmp", "tiff"}

// Registry maps format names and file extensions to encoders.
type Registry struct {
	encoders map[string]Encoder
	byExt    map[string]Encoder
}

// NewRegistry creates a registry with every built-in encoder.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[string]Encoder),
		byExt:    make(map[string]Encoder),
	}
	for _, enc := range builtin() {
		r.encoders[enc.Format()] = enc
		for _, ext := range enc.Extensions() {
			r.byExt[ext] = enc
		}
	}
	return r
}

// Get returns an encoder for the given format or extension, or nil.
func (r *Registry) Get(format string) Encoder {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if enc, ok := r.encoders[f]; ok {
		return enc
	}
	return r.byExt[f]
}

// ForPath picks the encoder matching path's extension.
func (r *Registry) ForPath(path string) (Encoder, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("no file extension in %q; want one of %s", path, strings.Join(r.Available(), ", "))
	}
	enc := r.Get(ext)
	if enc == nil {
		return nil, fmt.Errorf("unsupported output format %q; want one of %s", ext, strings.Join(r.Available(), ", "))
	}
	return enc, nil
}

// Available returns all format names in priority order.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range priority {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// ResolveFormats filters requested formats to known ones, dropping
// duplicates, and falls back to png when nothing is left.
func (r *Registry) ResolveFormats(requested []string) []string {
	var resolved []string
	seen := map[string]bool{}

	for _, f := range requested {
		enc := r.Get(f)
		if enc == nil || seen[enc.Format()] {
			continue
		}
		seen[enc.Format()] = true
		resolved = append(resolved, enc.Format())
	}

	if len(resolved) == 0 {
		resolved = append(resolved, "png")
	}
	return resolved
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	return fmt.Sprintf("preview encoders: %s", strings.Join(r.Available(), ", "))
}
