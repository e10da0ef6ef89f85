// Package views holds the HTML pages rendered by the HTTP handlers.
package views

import (
	"embed"
	"html/template"
)

//go:embed *.tmpl
var files embed.FS

// Templates parses every page. Pages are addressed by file name, e.g. "register.tmpl".
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "*.tmpl"))
}
