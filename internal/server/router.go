package server

import (
	"github.com/adilzhan/gameportal/internal/assetpath"
	"github.com/adilzhan/gameportal/internal/auth"
	"github.com/adilzhan/gameportal/internal/banner"
	"github.com/adilzhan/gameportal/internal/category"
	"github.com/adilzhan/gameportal/internal/config"
	"github.com/adilzhan/gameportal/internal/game"
	"github.com/adilzhan/gameportal/internal/metrics"
	"github.com/adilzhan/gameportal/internal/settings"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config          config.Config
	DB              *pgxpool.Pool
	ObjectStore     *minio.Client
	Resolver        *assetpath.Resolver
	AuthService     *auth.Service
	GameService     *game.Service
	BannerService   *banner.Service
	CategoryService *category.Service
	SettingsService *settings.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
// The public group serves the catalog read surface and login; everything
// that mutates state sits behind the session middleware, and the admin
// group additionally requires the admin flag.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")

	auth.RegisterRoutes(api, deps.AuthService)
	game.RegisterRoutes(api, deps.GameService, deps.Resolver)
	banner.RegisterRoutes(api, deps.BannerService, deps.Resolver)
	category.RegisterRoutes(api, deps.CategoryService)
	settings.RegisterRoutes(api, deps.SettingsService)

	protected := api.Group("/")
	protected.Use(auth.SessionMiddleware(deps.AuthService))
	auth.RegisterProtectedRoutes(protected, deps.AuthService)

	admin := protected.Group("/admin")
	admin.Use(auth.RequireAdmin())
	auth.RegisterAdminRoutes(admin, deps.AuthService)
	game.RegisterAdminRoutes(admin, deps.GameService, deps.Resolver)
	banner.RegisterAdminRoutes(admin, deps.BannerService, deps.Resolver)
	category.RegisterAdminRoutes(admin, deps.CategoryService)
	settings.RegisterAdminRoutes(admin, deps.SettingsService)

	return router
}
