// Package api exposes the collection store over HTTP. Routing follows the
// classic shape: /api/:col for lists and creation, /api/:col/:id for single
// records, plus bulk transfer under /api/:col/import, /api/export/all and
// /api/import/all.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/klinik-dev/klinik-store/internal/store"
)

type Handler struct {
	Store  *store.Store
	Logger *zap.Logger
}

func NewHandler(s *store.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Store: s, Logger: logger}
}

// fail maps a store error onto the wire: unknown collections and missing
// records are 404s, anything else is a 500 with a terse operation label.
func (h *Handler) fail(c *gin.Context, err error, label string) {
	switch {
	case errors.Is(err, store.ErrUnknownCollection):
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.Logger.Error(label+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": label + " failed"})
	}
}

func (h *Handler) List(c *gin.Context) {
	opts := store.ListOptions{
		Query:      c.Query("q"),
		SortKey:    c.Query("sort"),
		Descending: c.DefaultQuery("dir", "asc") == "desc",
		Offset:     intQuery(c, "offset", 0),
		Limit:      intQuery(c, "limit", store.DefaultLimit),
	}
	total, items, err := h.Store.List(c.Param("col"), opts)
	if err != nil {
		h.fail(c, err, "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "items": items})
}

func (h *Handler) Get(c *gin.Context) {
	row, err := h.Store.Get(c.Param("col"), c.Param("id"))
	if err != nil {
		h.fail(c, err, "get")
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) Create(c *gin.Context) {
	var payload store.Record
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := h.Store.Create(c.Param("col"), payload)
	if err != nil {
		h.fail(c, err, "create")
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) Update(c *gin.Context) {
	var patch store.Record
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := h.Store.Update(c.Param("col"), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) Delete(c *gin.Context) {
	removed, err := h.Store.Delete(c.Param("col"), c.Param("id"))
	if err != nil {
		h.fail(c, err, "delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "removed": removed})
}

func (h *Handler) BulkImport(c *gin.Context) {
	var rows []store.Record
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	count, err := h.Store.BulkImport(c.Param("col"), rows)
	if err != nil {
		h.fail(c, err, "import")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
}

func (h *Handler) ExportAll(c *gin.Context) {
	snapshot, err := h.Store.ExportAll()
	if err != nil {
		h.fail(c, err, "export")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) ImportAll(c *gin.Context) {
	var snapshot map[string]any
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.ImportAll(snapshot); err != nil {
		h.fail(c, err, "import all")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
