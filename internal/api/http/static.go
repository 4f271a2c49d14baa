package http

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/koji-portfolio/portfolio-backend/internal/api/http/response"
)

const msgAdminUnavailable = "Admin interface not available in production"

// StaticFallback serves files from dir for any unmatched GET or HEAD
// outside /api, falling back to index.html so client-side routes resolve.
// Unmatched /api paths get the JSON 404 envelope. In production the /admin
// pages are not served.
func StaticFallback(dir string, production bool) (gin.HandlerFunc, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve static dir %q: %w", dir, err)
	}
	index := filepath.Join(root, "index.html")

	return func(c *gin.Context) {
		p := path.Clean("/" + c.Request.URL.Path)
		if underPrefix(p, "/api") ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			NotFound(c)
			return
		}
		if production && underPrefix(p, "/admin") {
			response.Fail(c, http.StatusNotFound, msgAdminUnavailable, nil)
			return
		}

		name := filepath.Join(root, filepath.FromSlash(p))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}
		if info, err := os.Stat(filepath.Join(name, "index.html")); err == nil && !info.IsDir() {
			c.File(filepath.Join(name, "index.html"))
			return
		}
		if _, err := os.Stat(index); err == nil {
			c.File(index)
			return
		}
		NotFound(c)
	}, nil
}

func underPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// NotFound writes the JSON 404 envelope for unknown routes.
func NotFound(c *gin.Context) {
	response.Fail(c, http.StatusNotFound, "Route not found", nil)
}
