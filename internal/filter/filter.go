// Package filter validates client-declared media types against a configured
// allow-list before any upload is staged. The declared type is untrusted
// input; the decision here is pass/fail only and has no side effects.
package filter

import (
	"mime"
	"strings"
)

// Preset allow-lists selectable by name in configuration.
var presets = map[string][]string{
	"pdf": {"application/pdf"},
	"images": {
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/bmp",
		"image/webp",
	},
}

// AllowList is an immutable set of acceptable MIME types.
type AllowList struct {
	types map[string]struct{}
}

// New builds an AllowList from explicit MIME types.
func New(types ...string) AllowList {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		if norm := normalize(t); norm != "" {
			set[norm] = struct{}{}
		}
	}
	return AllowList{types: set}
}

// Parse builds an AllowList from a configuration value: either a preset name
// ("pdf", "images") or a comma-separated list of MIME types.
func Parse(spec string) AllowList {
	if preset, ok := presets[strings.TrimSpace(strings.ToLower(spec))]; ok {
		return New(preset...)
	}
	return New(strings.Split(spec, ",")...)
}

// Accept reports whether the declared media type is on the allow-list.
// Parameters such as "; charset=..." are stripped before matching.
func (l AllowList) Accept(declared string) bool {
	norm := normalize(declared)
	if norm == "" {
		return false
	}
	_, ok := l.types[norm]
	return ok
}

func normalize(mediaType string) string {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(mediaType))
	if err != nil {
		return ""
	}
	return mt
}
