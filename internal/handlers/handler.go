package handlers

import (
	"blogcms/internal/logger"
	"blogcms/internal/service"
	"blogcms/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Config holds the HTTP-layer knobs that come from configuration.
type Config struct {
	CORSOrigin     string
	MaxUploadBytes int64
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	images   *storage.ImageStore
	cfg      Config
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, images *storage.ImageStore, cfg Config, log *logger.Logger) *Handler {
	return &Handler{services: services, images: images, cfg: cfg, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.corsMiddleware())

	if h.cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = h.cfg.MaxUploadBytes
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Uploaded images are served statically
	if h.images != nil {
		router.Static("/images", h.images.Dir())
	}

	h.registerAuthRoutes(router)
	h.registerArticleRoutes(router)

	return router
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if h.cfg.CORSOrigin != "" {
		cfg.AllowOrigins = []string{h.cfg.CORSOrigin}
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cors.New(cfg)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.GET("/me", h.authMiddleware, h.me)
	}
}

func (h *Handler) registerArticleRoutes(r *gin.Engine) {
	articles := r.Group("/api/articles")
	{
		articles.GET("", h.listArticles)
		articles.GET("/:id", h.getArticle)

		// Mutations require a bearer token and the admin role.
		articles.POST("", h.authMiddleware, h.adminMiddleware, h.createArticle)
		articles.PUT("/:id", h.authMiddleware, h.adminMiddleware, h.updateArticle)
		articles.DELETE("/:id", h.authMiddleware, h.adminMiddleware, h.deleteArticle)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
