package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vamosjogar/sports-meetup-api/internal/model"
	"github.com/vamosjogar/sports-meetup-api/internal/repository"
)

// ActivityHandler serves the organizer-side endpoints: creating, editing and
// deleting activities and listing the caller's own.  All routes sit behind
// the JWT middleware.
type ActivityHandler struct {
	Activities ActivityStore
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(activities ActivityStore) *ActivityHandler {
	if activities == nil {
		panic("nil store passed to NewActivityHandler")
	}
	return &ActivityHandler{Activities: activities}
}

// activityReq is the JSON body shared by create and update.
type activityReq struct {
	Esporte   string   `json:"esporte"`
	Titulo    string   `json:"titulo"`
	Local     string   `json:"local"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	DataHora  string   `json:"data_hora"`
	Vagas     int      `json:"vagas"`
}

// parse validates the shared fields and returns the parsed schedule time.
// requireFuture is true on create: an activity cannot be born expired.
// Updates keep the stored time editable even once the activity has passed,
// so an organizer can fix a typo in history without fighting the validator.
func (b *activityReq) parse(requireFuture bool) (time.Time, string) {
	b.Esporte = strings.TrimSpace(b.Esporte)
	b.Titulo = strings.TrimSpace(b.Titulo)
	b.Local = strings.TrimSpace(b.Local)
	if b.Esporte == "" || b.Titulo == "" || b.Local == "" || b.DataHora == "" || b.Vagas == 0 {
		return time.Time{}, "todos os campos são obrigatórios"
	}
	if b.Vagas < model.MinVagas {
		return time.Time{}, "o número de vagas deve ser no mínimo 2"
	}
	t, err := time.Parse(time.RFC3339, b.DataHora)
	if err != nil {
		return time.Time{}, "data_hora inválida (use RFC3339)"
	}
	if requireFuture && !t.UTC().After(time.Now().UTC()) {
		return time.Time{}, "a data e hora devem ser no futuro"
	}
	return t.UTC(), ""
}

// Create handles POST /activities.
func (h *ActivityHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "não autenticado")
	}
	var body activityReq
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "corpo da requisição inválido")
	}
	when, msg := body.parse(true)
	if msg != "" {
		return fail(c, http.StatusBadRequest, kindValidation, msg)
	}

	a := &model.Activity{
		OwnerID:   ownerID,
		Esporte:   body.Esporte,
		Titulo:    body.Titulo,
		Local:     body.Local,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		DataHora:  when,
		Vagas:     body.Vagas,
	}
	if err := h.Activities.Create(c.Request().Context(), a); err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao criar atividade")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":      a.ID,
		"message": "atividade criada",
	})
}

// Update handles PUT /activities/:id.  The store filters by (id, owner), so
// editing someone else's activity and editing a nonexistent one are the same
// 404 — the endpoint does not reveal which.  Reducing vagas below the
// current enrollment count is rejected with the count, so the client can
// tell the organizer the minimum value that would not orphan anyone.
func (h *ActivityHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "não autenticado")
	}
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, kindValidation, "id inválido")
	}
	var body activityReq
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "corpo da requisição inválido")
	}
	when, msg := body.parse(false)
	if msg != "" {
		return fail(c, http.StatusBadRequest, kindValidation, msg)
	}

	a := &model.Activity{
		ID:        id,
		Esporte:   body.Esporte,
		Titulo:    body.Titulo,
		Local:     body.Local,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		DataHora:  when,
		Vagas:     body.Vagas,
	}
	err = h.Activities.UpdateByIDAndOwner(c.Request().Context(), a, ownerID)
	if err != nil {
		var capErr *repository.CapacityBelowEnrolledError
		switch {
		case errors.As(err, &capErr):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   kindConflict,
				"message": "não é possível reduzir as vagas abaixo do número de inscritos",
				"minimo":  capErr.Enrolled,
			})
		case errors.Is(err, repository.ErrActivityNotFound):
			return fail(c, http.StatusNotFound, kindNotFound, "atividade não encontrada")
		default:
			return fail(c, http.StatusInternalServerError, kindInternal, "erro ao atualizar atividade")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "atividade atualizada"})
}

// Delete handles DELETE /activities/:id.  Removing the activity also removes
// every enrollment on it in the same transaction; unfamiliar ids and foreign
// owners both get the unified 404.
func (h *ActivityHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "não autenticado")
	}
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, kindValidation, "id inválido")
	}
	if err := h.Activities.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "atividade não encontrada")
		}
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao excluir atividade")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "atividade excluída"})
}

// Mine handles GET /activities/minhas: the organizer's management view,
// most recent schedule first, expired activities included.
func (h *ActivityHandler) Mine(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "não autenticado")
	}
	list, err := h.Activities.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao carregar atividades")
	}
	return c.JSON(http.StatusOK, list)
}
