package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes mounts unauthenticated session endpoints.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/auth/login", handler.login)
}

// RegisterProtectedRoutes mounts endpoints requiring a live session.
func RegisterProtectedRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/auth/logout", handler.logout)
	group.GET("/auth/me", handler.me)
}

// RegisterAdminRoutes mounts the user-management endpoints.
func RegisterAdminRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/users", handler.listUsers)
	group.POST("/users", handler.createUser)
	group.PUT("/users/:userID", handler.updateUser)
	group.DELETE("/users/:userID", handler.deleteUser)
}

type httpHandler struct {
	service *Service
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *httpHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email and password are required"})
		return
	}

	result, err := h.service.Login(c.Request.Context(), LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "login failed"})
		return
	}

	maxAge := int(h.service.SessionTTL().Seconds())
	c.SetCookie(h.service.CookieName(), result.Token, maxAge, "/", "", h.service.CookieSecure(), true)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result.User})
}

func (h *httpHandler) logout(c *gin.Context) {
	token, err := c.Cookie(h.service.CookieName())
	if err == nil && token != "" {
		_ = h.service.Logout(c.Request.Context(), token)
	}
	c.SetCookie(h.service.CookieName(), "", -1, "/", "", h.service.CookieSecure(), true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *httpHandler) me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

type createUserRequest struct {
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	DisplayName *string `json:"display_name"`
	IsAdmin     bool    `json:"is_admin"`
}

func (h *httpHandler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email and password are required"})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.Email, req.Password, req.DisplayName, req.IsAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "email already in use"})
		case errors.Is(err, ErrWeakCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "credentials do not meet requirements"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}

func (h *httpHandler) listUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": users})
}

type updateUserRequest struct {
	DisplayName *string `json:"display_name"`
	Password    *string `json:"password"`
	IsAdmin     *bool   `json:"is_admin"`
}

func (h *httpHandler) updateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user id"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, UpdateUserInput{
		DisplayName: req.DisplayName,
		Password:    req.Password,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
		case errors.Is(err, ErrWeakCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "credentials do not meet requirements"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

func (h *httpHandler) deleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user id"})
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to delete user"})
		return
	}

	c.Status(http.StatusNoContent)
}
