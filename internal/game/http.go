package game

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/adilzhan/gameportal/internal/assetpath"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes mounts the public catalog endpoints.
func RegisterRoutes(group *gin.RouterGroup, service *Service, resolver *assetpath.Resolver) {
	handler := &httpHandler{service: service, resolver: resolver}
	group.GET("/games", handler.listGames)
	group.GET("/games/:slug", handler.getGame)
}

// RegisterAdminRoutes mounts the asset upload and record mutation endpoints.
func RegisterAdminRoutes(group *gin.RouterGroup, service *Service, resolver *assetpath.Resolver) {
	handler := &httpHandler{service: service, resolver: resolver}
	group.POST("/uploads", handler.uploadAssets)
	group.POST("/games", handler.createGame)
	group.PUT("/games/:id", handler.updateGame)
	group.DELETE("/games/:id", handler.deleteGame)
}

type httpHandler struct {
	service  *Service
	resolver *assetpath.Resolver
}

func (h *httpHandler) uploadAssets(c *gin.Context) {
	files := map[Slot]*multipart.FileHeader{}
	for _, slot := range Slots {
		header, err := c.FormFile(string(slot))
		if err != nil {
			continue
		}
		files[slot] = header
	}

	results, err := h.service.UploadAssets(c.Request.Context(), files)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "message": err.Error()})
		case errors.Is(err, ErrUnsupportedFileType), errors.Is(err, ErrBadArchive), errors.Is(err, ErrUnknownSlot):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to store assets"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": results})
}

// CategoryList accepts either a JSON array or a single legacy string value,
// normalizing at the boundary so nothing downstream branches on shape.
type CategoryList []string

// UnmarshalJSON implements json.Unmarshaler.
func (cl *CategoryList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*cl = NormalizeCategories(many)
		return nil
	}

	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*cl = NormalizeCategories([]string{one})
	return nil
}

type gameRequest struct {
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Categories    CategoryList `json:"categories"`
	Size          Size         `json:"size"`
	ThumbnailPath string       `json:"thumbnail_path"`
	IconPath      string       `json:"icon_path"`
	PreviewPath   string       `json:"preview_path"`
	PlayPath      string       `json:"play_path"`
	Active        *bool        `json:"active"`
}

func (h *httpHandler) createGame(c *gin.Context) {
	var req gameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	game, err := h.service.Create(c.Request.Context(), MetadataInput{
		Name:          req.Name,
		Description:   req.Description,
		Categories:    req.Categories,
		Size:          req.Size,
		ThumbnailPath: req.ThumbnailPath,
		IconPath:      req.IconPath,
		PreviewPath:   req.PreviewPath,
		PlayPath:      req.PlayPath,
		Active:        req.Active,
	})
	if err != nil {
		h.writeMutationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": WithURLs(h.resolver, game)})
}

type gameUpdateRequest struct {
	Name          *string       `json:"name"`
	Description   *string       `json:"description"`
	Categories    *CategoryList `json:"categories"`
	Size          *Size         `json:"size"`
	ThumbnailPath *string       `json:"thumbnail_path"`
	IconPath      *string       `json:"icon_path"`
	PreviewPath   *string       `json:"preview_path"`
	PlayPath      *string       `json:"play_path"`
	Active        *bool         `json:"active"`
}

func (h *httpHandler) updateGame(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid game id"})
		return
	}

	var req gameUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	input := UpdateInput{
		Name:          req.Name,
		Description:   req.Description,
		Size:          req.Size,
		ThumbnailPath: req.ThumbnailPath,
		IconPath:      req.IconPath,
		PreviewPath:   req.PreviewPath,
		PlayPath:      req.PlayPath,
		Active:        req.Active,
	}
	if req.Categories != nil {
		categories := []string(*req.Categories)
		input.Categories = &categories
	}

	game, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": WithURLs(h.resolver, game)})
}

func (h *httpHandler) listGames(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	games, total, err := h.service.List(c.Request.Context(), Filter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Size:     Size(c.Query("size")),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list games"})
		return
	}

	views := make([]View, 0, len(games))
	for _, g := range games {
		views = append(views, WithURLs(h.resolver, g))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"games": views,
		"total": total,
		"page":  page,
	}})
}

func (h *httpHandler) getGame(c *gin.Context) {
	game, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to fetch game"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": WithURLs(h.resolver, game)})
}

func (h *httpHandler) deleteGame(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid game id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to delete game"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) writeMutationError(c *gin.Context, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"errors":  validationErr.Fields,
		})
	case errors.Is(err, ErrSlugExists):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "a game with this name already exists"})
	case errors.Is(err, ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "game not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save game"})
	}
}
