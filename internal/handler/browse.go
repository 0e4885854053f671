package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vamosjogar/sports-meetup-api/internal/repository"
)

// BrowseHandler serves the public discovery endpoints: listing upcoming
// activities, fetching one and naming its participants.  No authentication
// required; these are the routes the cache and rate limiter front.
type BrowseHandler struct {
	Activities  ActivityStore
	Enrollments EnrollmentStore
}

// NewBrowseHandler constructs a BrowseHandler.
func NewBrowseHandler(activities ActivityStore, enrollments EnrollmentStore) *BrowseHandler {
	return &BrowseHandler{Activities: activities, Enrollments: enrollments}
}

// List handles GET /activities.  Only future activities come back, soonest
// first.  ?esporte= narrows by sport; empty or "Todos" means everything.
func (h *BrowseHandler) List(c echo.Context) error {
	esporte := strings.TrimSpace(c.QueryParam("esporte"))
	list, err := h.Activities.ListUpcoming(c.Request().Context(), esporte)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao carregar atividades")
	}
	return c.JSON(http.StatusOK, list)
}

// GetByID handles GET /activities/:id, including expired activities so that
// a shared link keeps working after the event has happened.
func (h *BrowseHandler) GetByID(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, kindValidation, "id inválido")
	}
	detail, err := h.Activities.GetDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "atividade não encontrada")
		}
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao carregar atividade")
	}
	return c.JSON(http.StatusOK, detail)
}

// Participants handles GET /activities/:id/participantes: names and
// enrollment dates in join order, oldest first.
func (h *BrowseHandler) Participants(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, kindValidation, "id inválido")
	}
	list, err := h.Enrollments.Participants(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "atividade não encontrada")
		}
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao carregar participantes")
	}
	return c.JSON(http.StatusOK, list)
}
