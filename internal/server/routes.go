package server

import (
	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/handlers"
)

type routeHandlers struct {
	health    *handlers.HealthHandler
	sessions  *handlers.SessionHandler
	trip      *handlers.TripHandler
	plan      *handlers.PlanHandler
	itinerary *handlers.ItineraryHandler
	budget    *handlers.BudgetHandler
	chat      *handlers.ChatHandler
	header    *handlers.HeaderHandler
	stream    *handlers.StreamHandler
	metrics   echo.HandlerFunc
}

func registerRoutes(
	e *echo.Echo,
	h routeHandlers,
	sessionMiddleware echo.MiddlewareFunc,
	sessionRateLimiter echo.MiddlewareFunc,
	upstreamRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", h.health.Health)
	e.GET("/metrics", h.metrics)

	api := e.Group("/api/v1")
	api.POST("/sessions", h.sessions.Create, sessionRateLimiter)

	tripGroup := api.Group("/trip", sessionMiddleware)
	tripGroup.GET("", h.trip.Get)
	tripGroup.PATCH("", h.trip.Patch)
	tripGroup.POST("/plan", h.plan.Plan, upstreamRateLimiter)
	tripGroup.POST("/members", h.trip.AddMember)
	tripGroup.DELETE("/members/:id", h.trip.RemoveMember)
	tripGroup.POST("/activities", h.trip.AddActivity)
	tripGroup.DELETE("/activities/:id", h.trip.RemoveActivity)
	tripGroup.POST("/expenses", h.trip.AddExpense)
	tripGroup.DELETE("/expenses/:id", h.trip.RemoveExpense)
	tripGroup.GET("/itinerary/:day", h.itinerary.Day, upstreamRateLimiter)
	tripGroup.POST("/itinerary/:day/bills", h.itinerary.CaptureBill, upstreamRateLimiter)
	tripGroup.GET("/budget", h.budget.Summary)
	tripGroup.GET("/budget/export/json", h.budget.ExportJSON)
	tripGroup.GET("/budget/export/csv", h.budget.ExportCSV)
	tripGroup.GET("/chat", h.chat.Transcript)
	tripGroup.POST("/chat", h.chat.Send, upstreamRateLimiter)
	tripGroup.GET("/stream", h.stream.Stream)

	header := api.Group("/trip-header", sessionMiddleware)
	header.GET("", h.header.Get)
	header.PUT("", h.header.Put)
}
