// Package web embeds the widget assets (static/) and serves them with the
// permissive headers embedding pages need. Unknown paths get a diagnostic
// page listing what the server actually has, which makes a botched deploy
// obvious from the browser.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"
)

//go:embed all:static
var staticFS embed.FS

// contentTypes maps the extensions the widget bundle actually ships.
// Anything else falls back to octet-stream rather than content sniffing.
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// expectedFiles is the deploy manifest shown on the diagnostic page.
var expectedFiles = []string{
	"index.html",
	"demo.html",
	"chatbot-widget.html",
	"chatbot-embed.js",
	"dashboard.html",
	"login.html",
}

var notFoundTmpl = template.Must(template.New("404").Parse(`<!DOCTYPE html>
<html>
<head><title>404 - File Not Found</title></head>
<body>
<h1>404 - File Not Found</h1>
<p>The file <code>{{.Requested}}</code> was not found on this server.</p>
<h2>Expected files</h2>
<ul>{{range .Expected}}<li><code>{{.}}</code></li>{{end}}</ul>
<h2>Files actually present</h2>
<ul>{{range .Present}}<li><a href="/{{.}}"><code>{{.}}</code></a></li>{{end}}</ul>
</body>
</html>`))

// Handler returns an http.Handler serving the embedded widget assets.
// "/" serves index.html; a missing file answers 404 with the diagnostic page.
func Handler() http.Handler {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" || name == "." {
			name = "index.html"
		}

		data, err := fs.ReadFile(subFS, name)
		if err != nil {
			serveNotFound(w, subFS, name)
			return
		}

		ct, ok := contentTypes[path.Ext(name)]
		if !ok {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		if _, err := w.Write(data); err != nil {
			slog.Debug("web: failed to write asset", "path", name, "error", err)
		}
	})
}

func serveNotFound(w http.ResponseWriter, subFS fs.FS, requested string) {
	var present []string
	_ = fs.WalkDir(subFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			present = append(present, p)
		}
		return nil
	})
	sort.Strings(present)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := notFoundTmpl.Execute(w, struct {
		Requested string
		Expected  []string
		Present   []string
	}{requested, expectedFiles, present}); err != nil {
		slog.Debug("web: failed to render 404 page", "error", err)
	}
}
