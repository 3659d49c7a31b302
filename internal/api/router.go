package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the handler into a gin engine. publicDir, when non-empty
// and existing, is served for unmatched non-API routes with an index.html
// fallback so a SPA can host its own routing.
func NewRouter(h *Handler, publicDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors())

	r.GET("/health", h.Health)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/export/all", h.ExportAll)
		apiGroup.POST("/import/all", h.ImportAll)
		apiGroup.GET("/:col", h.List)
		apiGroup.POST("/:col", h.Create)
		apiGroup.POST("/:col/import", h.BulkImport)
		apiGroup.GET("/:col/:id", h.Get)
		apiGroup.PUT("/:col/:id", h.Update)
		apiGroup.DELETE("/:col/:id", h.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API route not found"})
			return
		}
		if publicDir == "" {
			c.Status(http.StatusNotFound)
			return
		}
		candidate := filepath.Join(publicDir, filepath.Clean("/"+path))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}
		index := filepath.Join(publicDir, "index.html")
		if info, err := os.Stat(index); err == nil && info.Mode().IsRegular() {
			c.File(index)
			return
		}
		c.Status(http.StatusNotFound)
	})

	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
