// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"spurt/config"
	"spurt/internal/delivery/api/middleware"
	"spurt/internal/delivery/api/router/handler"
	"spurt/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// apiPrefix is the base path every application route lives under.
const apiPrefix = "/api/spurt"

type RouterParams struct {
	fx.In

	AccountHandler    *handler.AccountHandler
	EventHandler      *handler.EventHandler
	PhotoHandler      *handler.PhotoHandler
	SubscriberHandler *handler.SubscriberHandler
	AuthMiddleware    *middleware.AuthMiddleware
	Config            *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler    *handler.AccountHandler
	eventHandler      *handler.EventHandler
	photoHandler      *handler.PhotoHandler
	subscriberHandler *handler.SubscriberHandler
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler:    params.AccountHandler,
		eventHandler:      params.EventHandler,
		photoHandler:      params.PhotoHandler,
		subscriberHandler: params.SubscriberHandler,
		authMiddleware:    params.AuthMiddleware,
		config:            params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	if r.config.Metrics != nil && r.config.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	// Static segments take priority over /:id in echo's router, so public and
	// admin routes can share the prefix.
	api := e.Group(apiPrefix)
	admin := []echo.MiddlewareFunc{
		r.authMiddleware.Authenticate,
		r.authMiddleware.RequireRole(entity.RoleAdmin),
	}

	// Account routes
	{
		api.POST("/createCustomer", r.accountHandler.Signup)
		api.POST("/authenticate", r.accountHandler.Login)
		api.GET("/confirm-email", r.accountHandler.ConfirmEmail)
	}

	// Subscriber routes
	api.POST("/subscribe", r.subscriberHandler.Subscribe)

	// Event routes
	{
		api.GET("", r.eventHandler.ListEvents)
		api.GET("/getEvent/:eventId", r.eventHandler.GetEvent)
		api.GET("/events/:id/qr", r.eventHandler.EventShareQR)
		api.POST("/createEvent", r.eventHandler.CreateEvent, admin...)
	}

	// Photo routes
	{
		api.GET("/:id", r.photoHandler.GetMainPhoto)
		api.POST("/setMain", r.photoHandler.SetMain, admin...)
		api.POST("/:id", r.photoHandler.Upload, admin...)
		api.DELETE("/:id", r.photoHandler.Delete, admin...)
	}
}
