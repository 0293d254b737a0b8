package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the navigable page endpoints the access gate governs.
// The UI itself is rendered by a separate frontend; these endpoints exist so
// the gate's redirect and tenant-rewrite decisions have concrete routes to
// act on.
type PageHandler struct{}

// NewPageHandler creates a new PageHandler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Page returns a minimal response naming the page that was reached.
func (h *PageHandler) Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": name})
	}
}

// OrgPage returns a minimal response for a tenant-scoped page.
func (h *PageHandler) OrgPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page": "org",
		"slug": c.Param("slug"),
		"path": c.Param("rest"),
	})
}
