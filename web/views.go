package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var viewFuncs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("Jan 02, 2006")
	},
}

// parseViews builds one template per page, each one sharing the
// layout. Views are addressed by their file name minus the extension.
func parseViews() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("unable to list views, cause %w", err)
	}
	views := map[string]*template.Template{}
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		if name == "layout" {
			continue
		}
		t, err := template.New(name).Funcs(viewFuncs).ParseFS(templateFS, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("unable to parse view %v, cause %w", name, err)
		}
		views[name] = t
	}
	return views, nil
}
