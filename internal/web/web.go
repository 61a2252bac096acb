// Package web bundles the HTML templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names
const (
	PageOpinion    = "opinion.html"
	PageAddOpinion = "add_opinion.html"
	PageNotFound   = "404.html"
	PageServer     = "500.html"
)

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.UTC().Format("02 Jan 2006 15:04 UTC")
	},
}

// Templates parses every page together with the shared layout.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static returns the asset tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
