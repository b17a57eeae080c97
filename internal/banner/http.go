package banner

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/adilzhan/gameportal/internal/assetpath"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes mounts the public banner listing.
func RegisterRoutes(group *gin.RouterGroup, service *Service, resolver *assetpath.Resolver) {
	handler := &httpHandler{service: service, resolver: resolver}
	group.GET("/banners", handler.listActive)
}

// RegisterAdminRoutes mounts banner management endpoints.
func RegisterAdminRoutes(group *gin.RouterGroup, service *Service, resolver *assetpath.Resolver) {
	handler := &httpHandler{service: service, resolver: resolver}
	group.GET("/banners", handler.listAll)
	group.POST("/banners", handler.create)
	group.PUT("/banners/:bannerID", handler.update)
	group.PATCH("/banners/:bannerID/active", handler.setActive)
	group.DELETE("/banners/:bannerID", handler.delete)
}

type httpHandler struct {
	service  *Service
	resolver *assetpath.Resolver
}

func (h *httpHandler) listActive(c *gin.Context) {
	h.list(c, true)
}

func (h *httpHandler) listAll(c *gin.Context) {
	h.list(c, false)
}

func (h *httpHandler) list(c *gin.Context, activeOnly bool) {
	banners, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list banners"})
		return
	}

	views := make([]View, 0, len(banners))
	for _, b := range banners {
		views = append(views, WithURL(h.resolver, b))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}

func (h *httpHandler) create(c *gin.Context) {
	input, ok := h.bindForm(c)
	if !ok {
		return
	}

	banner, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": WithURL(h.resolver, banner)})
}

func (h *httpHandler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("bannerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid banner id"})
		return
	}

	input, ok := h.bindForm(c)
	if !ok {
		return
	}

	banner, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": WithURL(h.resolver, banner)})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *httpHandler) setActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("bannerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid banner id"})
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "active flag is required"})
		return
	}

	banner, err := h.service.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": WithURL(h.resolver, banner)})
}

func (h *httpHandler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("bannerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid banner id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) bindForm(c *gin.Context) (Input, bool) {
	input := Input{
		Label:     c.PostForm("label"),
		TargetURL: c.PostForm("target_url"),
	}
	if raw := c.PostForm("position"); raw != "" {
		position, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid position"})
			return Input{}, false
		}
		input.Position = position
	}
	if raw := c.PostForm("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid active flag"})
			return Input{}, false
		}
		input.Active = &active
	}
	if header, err := c.FormFile("image"); err == nil {
		input.Image = header
	}
	return input, true
}

func (h *httpHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBannerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "banner not found"})
	case errors.Is(err, ErrInvalidBanner):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save banner"})
	}
}
