// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"echotrail/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	TrailHandler  *handler.TrailHandler
	DeviceHandler *handler.DeviceHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	trailHandler  *handler.TrailHandler
	deviceHandler *handler.DeviceHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		trailHandler:  params.TrailHandler,
		deviceHandler: params.DeviceHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	trailGroup := e.Group("/trail")
	{
		trailGroup.POST("/refresh", r.trailHandler.Refresh)
		trailGroup.GET("/notes", r.trailHandler.ActiveNotes)
		trailGroup.POST("/notes/sync", r.trailHandler.SyncNotes)
		trailGroup.POST("/notes/:id/consume", r.trailHandler.ConsumeNote)
		trailGroup.GET("/pending", r.trailHandler.ConsumePendingRecord)
		trailGroup.DELETE("/pending", r.trailHandler.ClearPendingRecord)
		trailGroup.GET("/tracking", r.trailHandler.TrackingStatus)
		trailGroup.PUT("/tracking", r.trailHandler.SetTracking)
	}

	devicesGroup := e.Group("/devices")
	{
		devicesGroup.POST("", r.deviceHandler.RegisterDevice)
	}
}
