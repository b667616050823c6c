// Package server assembles the HTTP surface from the feature packages.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-reserve/backend/internal/auth"
	"github.com/aura-reserve/backend/internal/events"
	"github.com/aura-reserve/backend/internal/exports"
	"github.com/aura-reserve/backend/internal/history"
	"github.com/aura-reserve/backend/internal/middleware"
	"github.com/aura-reserve/backend/internal/organizations"
	"github.com/aura-reserve/backend/internal/realtime"
	"github.com/aura-reserve/backend/internal/reservations"
	"github.com/aura-reserve/backend/internal/resources"
	"github.com/aura-reserve/backend/internal/store"
	"github.com/aura-reserve/backend/internal/users"
	"github.com/aura-reserve/backend/internal/validate"
	"github.com/aura-reserve/backend/pkg/response"
	"github.com/aura-reserve/backend/pkg/utils"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Store       store.Store
	History     history.Store
	Publisher   events.Publisher
	Hub         *realtime.Hub
	Exports     *exports.Service // nil disables export endpoints (503)
	JWT         *auth.JWTService
	Hasher      utils.PasswordHasher
	CORSOrigins string
	Logger      *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validate.New()

	orgHandler := organizations.NewHandler(organizations.NewService(d.Store.Organizations, v, logger))
	resourceSvc := resources.NewService(d.Store.Resources, d.Store.Organizations, v, logger)
	resourceHandler := resources.NewHandler(resourceSvc)
	userHandler := users.NewHandler(users.NewService(d.Store.Users, d.Store.Organizations, d.Hasher, v, logger))
	reservationHandler := reservations.NewHandler(reservations.NewService(d.Store.Reservations, d.Store.Users, d.Publisher, v, logger))
	historyHandler := history.NewHandler(d.History)
	exportHandler := exports.NewHandler(d.Exports)
	authHandler := auth.NewHandler(d.Store.Users, d.Hasher, d.JWT, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/", func(c *gin.Context) {
		response.OK(c, gin.H{"message": "Welcome to the reservation service"})
	})
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	router.POST("/auth/login", authHandler.Login)

	api := router.Group("")
	api.Use(middleware.OptionalJWT(d.JWT))
	{
		api.POST("/organizations", orgHandler.Create)
		api.GET("/organizations", orgHandler.List)
		api.GET("/organizations/:id", orgHandler.Get)
		api.PATCH("/organizations/:id", orgHandler.Update)
		api.DELETE("/organizations/:id", orgHandler.Delete)
		api.POST("/organizations/:id/exports", exportHandler.Request)
		api.GET("/organizations/:id/exports/:exportId", exportHandler.Get)

		api.POST("/resources", resourceHandler.Create)
		api.GET("/resources", resourceHandler.List)
		api.GET("/resources/:id", resourceHandler.Get)
		api.PATCH("/resources/:id", resourceHandler.Update)
		api.DELETE("/resources/:id", resourceHandler.Delete)

		api.POST("/users", userHandler.Create)
		api.GET("/users", userHandler.List)
		api.GET("/users/:id", userHandler.Get)
		api.PATCH("/users/:id", userHandler.Update)
		api.DELETE("/users/:id", userHandler.Delete)

		api.POST("/reservations", reservationHandler.Create)
		api.GET("/reservations", reservationHandler.List)
		api.GET("/reservations/:id", reservationHandler.Get)
		api.PATCH("/reservations/:id", reservationHandler.Update)
		api.DELETE("/reservations/:id", reservationHandler.Delete)
		api.POST("/reservations/:id/cancel", reservationHandler.Cancel)
		api.GET("/reservations/:id/history", historyHandler.List)
	}

	if d.Hub != nil {
		router.GET("/ws/resources/:id", realtime.ServeWs(d.Hub, resourceSvc.Exists, logger))
	}
	return router
}
