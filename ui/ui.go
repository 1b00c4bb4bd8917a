package ui

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var TemplatesFS embed.FS

// Templates parses the embedded pages with funcs available to every page.
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(TemplatesFS, "templates/*.html")
}
