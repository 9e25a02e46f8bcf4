// Package web bundles the page templates and browser assets into the binary.
package web

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/coffee-focus/coffeefocus/internal/stats"
)

//go:embed templates static
var assets embed.FS

// Funcs are the helpers available to every page template.
var Funcs = template.FuncMap{
	"mmss":         stats.FormatMMSS,
	"minutesLabel": stats.FormatMinutesLabel,
}

// Templates parses every page, keyed by file name (for example "home.html").
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(Funcs).ParseFS(assets, "templates/*.html")
}

// Static exposes the contents of static/ at its root.
func Static() fs.FS {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		// static/ is embedded at build time; Sub only fails for invalid names.
		panic(err)
	}
	return static
}
