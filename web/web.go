// Package web holds the server-rendered pages.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page and partial
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(files, "templates/*.html")
}
