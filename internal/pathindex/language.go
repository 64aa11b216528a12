package pathindex

import (
	"path"
	"strings"
)

// Languages maps a lowercase file extension, without the dot, to the tag
// placed after the opening code fence.
type Languages map[string]string

// DefaultLanguages returns the built-in extension table.
func DefaultLanguages() Languages {
	return Languages{
		"rs":   "rust",
		"json": "json",
		"toml": "toml",
		"js":   "javascript",
		"rb":   "ruby",
		"slim": "slim",
		"vue":  "vue",
		"md":   "markdown",
		"go":   "go",
	}
}

// Merge returns a copy of l with the entries of other laid over it. Keys of
// other are normalized the same way Lookup normalizes extensions.
func (l Languages) Merge(other map[string]string) Languages {
	out := make(Languages, len(l)+len(other))
	for k, v := range l {
		out[k] = v
	}
	for k, v := range other {
		out[normalizeExt(k)] = v
	}
	return out
}

// Lookup returns the fence tag for the extension of p, or "" when the
// extension is missing or unmapped.
func (l Languages) Lookup(p string) string {
	ext := path.Ext(strings.ReplaceAll(p, "\\", "/"))
	if ext == "" {
		return ""
	}
	return l[normalizeExt(ext)]
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
