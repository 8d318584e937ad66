package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lyzr/matchdir/cmd/matchdir/container"
	"github.com/lyzr/matchdir/cmd/matchdir/repository"
	"github.com/lyzr/matchdir/cmd/matchdir/service"
	"github.com/lyzr/matchdir/common/logger"
)

// MatchHandler handles match-related requests
type MatchHandler struct {
	matchService *service.MatchService
	log          *logger.Logger
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(c *container.Container) *MatchHandler {
	return &MatchHandler{
		matchService: c.MatchService,
		log:          c.Components.Logger,
	}
}

// ListMatches lists every match as {id, name}
// GET /matches
func (h *MatchHandler) ListMatches(c echo.Context) error {
	summaries, err := h.matchService.ListMatches(c.Request().Context())
	if err != nil {
		return h.internalError(c, "failed to list matches", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"matches": summaries,
	})
}

// CreateMatch creates a match at the starting position
// POST /matches
func (h *MatchHandler) CreateMatch(c echo.Context) error {
	name, err := readStringField(c, "name")
	if err != nil {
		return badRequest(c, err)
	}

	id, err := h.matchService.CreateMatch(c.Request().Context(), name)
	if errors.Is(err, service.ErrInvalidMatch) {
		return badRequest(c, err)
	}
	if err != nil {
		return h.internalError(c, "failed to create match", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id": id,
	})
}

// GetMatch retrieves one match including its state
// GET /matches/:id
func (h *MatchHandler) GetMatch(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}

	match, err := h.matchService.GetMatch(c.Request().Context(), id)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return h.internalError(c, "failed to get match", err)
	}

	return c.JSON(http.StatusOK, match)
}

// UpdateState overwrites the state of one match
// PUT /matches/:id
func (h *MatchHandler) UpdateState(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}

	state, err := readStringField(c, "state")
	if err != nil {
		return badRequest(c, err)
	}

	err = h.matchService.UpdateState(c.Request().Context(), id, state)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return h.internalError(c, "failed to update match state", err)
	}

	return c.NoContent(http.StatusOK)
}

// matchID parses the :id path parameter; anything but a base-10 integer matches no route
func matchID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{
		"error": err.Error(),
	})
}

func (h *MatchHandler) internalError(c echo.Context, msg string, err error) error {
	h.log.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).
		Error(msg, "error", err, "path", c.Path())

	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": msg,
	})
}
