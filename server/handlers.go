package server

import (
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"mdsite/logfields"
)

// reloadScript reconnects to /livereload and reloads the page on "reload".
const reloadScript = `<script>(function(){` +
	`var proto=location.protocol==='https:'?'wss://':'ws://';` +
	`var ws=new WebSocket(proto+location.host+'/livereload');` +
	`ws.onmessage=function(e){if(e.data==='reload'){location.reload();}};` +
	`})();</script>`

// handleHTML serves a rendered page, injecting the live reload script when
// enabled.
func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request, filePath string) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read file: %v", err), http.StatusNotFound)
		return
	}
	s.log.Debug("Serving page", logfields.Page(s.relPath(filePath)))

	if s.config.EnableLiveReload {
		content = []byte(injectReloadScript(string(content)))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(content)
}

// injectReloadScript places the script before the last </body>, or appends
// it when the page has no body end tag.
func injectReloadScript(page string) string {
	idx := strings.LastIndex(strings.ToLower(page), "</body>")
	if idx < 0 {
		return page + reloadScript
	}
	return page[:idx] + reloadScript + page[idx:]
}

// handleIndex generates a listing of the pages and folders in dir
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read directory: %v", err), http.StatusInternalServerError)
		return
	}

	var items []string
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasPrefix(name, "."):
		case entry.IsDir():
			items = append(items, name+"/")
		case strings.HasSuffix(strings.ToLower(name), ".html"):
			items = append(items, name)
		}
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset='utf-8'><title>Index</title></head>")
	b.WriteString("<body><div class='container'><h1>Pages</h1><ul>")
	if len(items) == 0 {
		b.WriteString("<li>No pages found</li>")
	}
	for _, item := range items {
		escaped := html.EscapeString(item)
		fmt.Fprintf(&b, "<li><a href='%s'>%s</a></li>", escaped, escaped)
	}
	b.WriteString("</ul></div></body></html>")

	page := b.String()
	if s.config.EnableLiveReload {
		page = injectReloadScript(page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// handleStaticFile serves a non-page file from the output directory
func (s *Server) handleStaticFile(w http.ResponseWriter, r *http.Request, filePath string) {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	s.log.Debug("Serving file", logfields.Path(s.relPath(filePath)))
	w.Header().Set("Content-Type", getContentType(strings.ToLower(filepath.Ext(filePath))))
	http.ServeFile(w, r, filePath)
}
