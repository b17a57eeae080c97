package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the public settings read endpoints.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/settings/:key", handler.get)
	group.GET("/settings/:key/links", handler.getLinks)
}

// RegisterAdminRoutes mounts the settings management endpoints.
func RegisterAdminRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/settings", handler.list)
	group.PUT("/settings/:key", handler.put)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) get(c *gin.Context) {
	setting, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": setting})
}

func (h *httpHandler) getLinks(c *gin.Context) {
	links, err := h.service.GetAssetLinks(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": links})
}

func (h *httpHandler) list(c *gin.Context) {
	all, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": all})
}

func (h *httpHandler) put(c *gin.Context) {
	var value json.RawMessage
	if err := c.ShouldBindJSON(&value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "value must be valid JSON"})
		return
	}

	setting, err := h.service.Put(c.Request.Context(), c.Param("key"), value)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": setting})
}

func (h *httpHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSettingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "setting not found"})
	case errors.Is(err, ErrInvalidSetting):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to read settings"})
	}
}
