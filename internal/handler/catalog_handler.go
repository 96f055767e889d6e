package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"checklist-service/internal/catalog"
)

// CatalogHandler serves the static catalog: phases, site types and the master
// template list.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func (h *CatalogHandler) ListPhases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"phases": catalog.Phases()})
}

func (h *CatalogHandler) ListSiteTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"site_types": catalog.SiteTypes()})
}

func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": catalog.Templates()})
}
