package router

import (
	"github.com/labstack/echo/v4"

	"github.com/vamosjogar/sports-meetup-api/internal/handler"
	"github.com/vamosjogar/sports-meetup-api/internal/middleware"
)

// RegisterActivities registers the authenticated activity endpoints:
// organizer management plus participant join/leave/status. Echo routes
// static segments before parameters, so /activities/minhas never collides
// with /activities/:id even though the latter lives on the public group.
func RegisterActivities(e *echo.Echo, a *handler.ActivityHandler, en *handler.EnrollmentHandler, jwtSecret string) {
	g := e.Group("/activities", middleware.JWTAuth(jwtSecret))

	g.POST("", a.Create)
	g.GET("/minhas", a.Mine)
	g.PUT("/:id", a.Update)
	g.DELETE("/:id", a.Delete)

	g.POST("/:id/participar", en.Join)
	g.DELETE("/:id/sair", en.Leave)
	g.GET("/:id/status", en.Status)
}
