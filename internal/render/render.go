// Package render serves templated pages backed by stored posts.
package render

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/site"
)

// PostGetter resolves a stored post by its path and name.
type PostGetter interface {
	Get(ctx context.Context, path, name string) (model.Post, error)
}

// Pages is the fallback page handler. It resolves request paths
// through the site's route table and renders the mapped template,
// filling templated routes from the matching post.
type Pages struct {
	routes       map[string]site.Route
	templatesDir string
	posts        PostGetter
	logger       *logger.Logger
}

// NewPages creates the fallback page handler for one site.
func NewPages(cfg site.Config, posts PostGetter, logger *logger.Logger) *Pages {
	return &Pages{
		routes:       cfg.Routes,
		templatesDir: cfg.TemplatesDir(),
		posts:        posts,
		logger:       logger,
	}
}

// pageData is the payload handed to templated routes.
type pageData struct {
	Name    string
	Content template.HTML
	Date    time.Time
	Path    string
	Owner   string
}

// ServeHTTP resolves the request path against the route table. An
// exact match wins; otherwise the parent path is tried so that
// /blog/my-post resolves through the /blog route.
func (p *Pages) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	urlPath := r.URL.Path

	route, ok := p.routes[urlPath]
	if !ok {
		route, ok = p.routes[parentPath(urlPath)]
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	raw, err := os.ReadFile(filepath.Join(p.templatesDir, route.Template))
	if err != nil {
		p.logger.Error("Pages: failed to read template",
			"template", route.Template,
			"error", err.Error())
		http.NotFound(w, r)
		return
	}

	if !route.Templated {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(raw)
		return
	}

	name := path.Base(urlPath)
	post, err := p.posts.Get(r.Context(), parentPath(urlPath), name)
	if err != nil {
		p.logger.Debug("Pages: post lookup failed",
			"path", urlPath,
			"error", err.Error())
		http.NotFound(w, r)
		return
	}

	tmpl, err := template.New(route.Template).Parse(string(raw))
	if err != nil {
		p.logger.Error("Pages: failed to parse template",
			"template", route.Template,
			"error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, pageData{
		Name:    post.Name,
		Content: template.HTML(post.Content),
		Date:    post.Date,
		Path:    post.Path,
		Owner:   post.Owner,
	}); err != nil {
		p.logger.Error("Pages: failed to render template",
			"template", route.Template,
			"error", err.Error())
	}
}

// parentPath strips the last path segment. "/blog/my-post" becomes
// "/blog", "/my-page" becomes "/".
func parentPath(urlPath string) string {
	dir := path.Dir(urlPath)
	if dir == "." {
		return "/"
	}
	return dir
}
