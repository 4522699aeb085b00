// Package handler exposes accounts, drawings and stories over HTTP.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyboard-server/internal/auth"
	"storyboard-server/internal/blob"
	"storyboard-server/internal/library"
	"storyboard-server/internal/messaging"
)

// Handler serves the app API.
type Handler struct {
	authService    auth.Service
	libs           *library.Manager
	blobs          blob.Store
	publisher      messaging.TaskPublisher
	maxUploadBytes int64
	logger         *zap.Logger
}

// Options holds optional handler settings.
type Options struct {
	// Publisher queues scene image generation; nil disables it.
	Publisher      messaging.TaskPublisher
	MaxUploadBytes int64
}

// NewHandler creates a Handler.
func NewHandler(authService auth.Service, libs *library.Manager, blobs blob.Store, opts Options, logger *zap.Logger) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		authService:    authService,
		libs:           libs,
		blobs:          blobs,
		publisher:      opts.Publisher,
		maxUploadBytes: opts.MaxUploadBytes,
		logger:         logger.Named("Handler"),
	}
}

// RegisterRoutes mounts /auth and /api. authLimiter guards the /auth group
// and may be nil.
func (h *Handler) RegisterRoutes(router gin.IRouter, authLimiter gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	if authLimiter != nil {
		authGroup.Use(authLimiter)
	}
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/logout", h.AuthMiddleware(), h.logout)

	api := router.Group("/api", h.AuthMiddleware())

	images := api.Group("/images")
	images.GET("", h.listImages)
	images.POST("/upload", h.uploadImage)
	images.PUT("/update/:id", h.updateImage)
	images.DELETE("/delete/:id", h.deleteImage)

	stories := api.Group("/stories")
	stories.GET("", h.listStories)
	stories.POST("", h.createStory)
	stories.DELETE("", h.deleteStory)
	stories.PATCH("/scenes/:index", h.updateScene)
	stories.DELETE("/scenes/:index", h.deleteScene)
	stories.POST("/generate", h.generateScenes)
}

// userLibrary resolves the library of the authenticated user.
func (h *Handler) userLibrary(c *gin.Context) (*library.Library, bool) {
	lib, err := h.libs.For(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		handleServiceError(c, err)
		return nil, false
	}
	return lib, true
}
