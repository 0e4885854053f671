package router

import (
	"github.com/labstack/echo/v4"

	"github.com/vamosjogar/sports-meetup-api/internal/handler"
)

// RegisterAuth registers the account endpoints. Registration, login and
// refresh need no session; logout takes the refresh token in the body, so
// it can be called with an expired access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/users")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}
