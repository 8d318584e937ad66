package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/lyzr/matchdir/cmd/matchdir/container"
	"github.com/lyzr/matchdir/cmd/matchdir/handlers"
)

// RegisterMatchRoutes registers the match collection and item routes
func RegisterMatchRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewMatchHandler(c)

	matches := e.Group("/matches")
	{
		matches.GET("", h.ListMatches)     // GET /matches
		matches.POST("", h.CreateMatch)    // POST /matches
		matches.GET("/:id", h.GetMatch)    // GET /matches/7
		matches.PUT("/:id", h.UpdateState) // PUT /matches/7
	}
}
