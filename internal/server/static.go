package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves a built frontend from dir, falling back to index.html
// for client-side routes. Unknown /api paths still answer with JSON.
func mountStatic(r *gin.Engine, dir string, log *slog.Logger) {
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "endpoint not found"})
			return
		}
		c.Status(http.StatusNotFound)
	})

	if dir == "" {
		log.Info("static directory not configured; API only mode")
		return
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Warn("static directory missing", "path", dir, "error", err)
		return
	}

	indexPath := filepath.Join(dir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		log.Warn("index.html not found", "path", indexPath, "error", err)
		return
	}

	r.GET("/", func(c *gin.Context) {
		c.File(indexPath)
	})
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "endpoint not found"})
			return
		}
		// serve real files (css, js, images) before falling back to the SPA shell
		candidate := filepath.Join(dir, filepath.Clean("/"+path))
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			c.File(candidate)
			return
		}
		c.File(indexPath)
	})
}
