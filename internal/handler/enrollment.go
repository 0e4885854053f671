package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vamosjogar/sports-meetup-api/internal/queue"
	"github.com/vamosjogar/sports-meetup-api/internal/repository"
	"github.com/vamosjogar/sports-meetup-api/internal/service"
)

// EnrollmentHandler serves the participant-side endpoints: joining an
// activity, leaving it and checking one's own status. Publisher may be nil
// when no broker is configured; joins still succeed, only the event is
// skipped.
type EnrollmentHandler struct {
	Enrollments EnrollmentStore
	Activities  ActivityStore
	Publisher   service.EventPublisher
	Log         zerolog.Logger
}

// NewEnrollmentHandler constructs an EnrollmentHandler.
func NewEnrollmentHandler(enrollments EnrollmentStore, activities ActivityStore, pub service.EventPublisher, log zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{Enrollments: enrollments, Activities: activities, Publisher: pub, Log: log}
}

// Join handles POST /activities/:id/participar. The store serializes
// concurrent joins on the activity row, so the enrollment count can never
// pass the capacity no matter how many requests race. The ordering of
// failures is fixed: unknown activity, then expired, then own activity,
// then duplicate, then full.
func (h *EnrollmentHandler) Join(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "não autenticado")
	}
	activityID, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, kindValidation, "id inválido")
	}

	remaining, err := h.Enrollments.Join(c.Request().Context(), userID, activityID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrActivityNotFound):
			return fail(c, http.StatusNotFound, kindNotFound, "atividade não encontrada")
		case errors.Is(err, repository.ErrActivityExpired):
			return fail(c, http.StatusBadRequest, kindValidation, "esta atividade já aconteceu")
		case errors.Is(err, repository.ErrOwnActivity):
			return fail(c, http.StatusBadRequest, kindValidation, "você não pode participar da sua própria atividade")
		case errors.Is(err, repository.ErrAlreadyEnrolled):
			return fail(c, http.StatusBadRequest, kindConflict, "você já está inscrito nesta atividade")
		case errors.Is(err, repository.ErrActivityFull):
			return fail(c, http.StatusBadRequest, kindCapacityExceeded, "atividade lotada")
		default:
			return fail(c, http.StatusInternalServerError, kindInternal, "erro ao confirmar inscrição")
		}
	}

	h.publishConfirmed(c, userID, activityID, remaining)

	return c.JSON(http.StatusOK, echo.Map{
		"message":           "inscrição confirmada",
		"vagas_disponiveis": remaining,
	})
}

// publishConfirmed emits the enrollment.confirmed event off the request
// path. Failures are logged and swallowed; the enrollment is already
// durable in MySQL.
func (h *EnrollmentHandler) publishConfirmed(c echo.Context, userID, activityID uint64, remaining int) {
	if h.Publisher == nil {
		return
	}
	nome, _ := c.Get("nome").(string)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ev := queue.EnrollmentConfirmedEvent{
			ActivityID:     activityID,
			UserID:         userID,
			UserNome:       nome,
			VagasRestantes: remaining,
			ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if detail, err := h.Activities.GetDetail(ctx, activityID); err == nil {
			ev.ActivityTitulo = detail.Titulo
			ev.Esporte = detail.Esporte
			ev.DataHora = detail.DataHora.UTC().Format(time.RFC3339)
		}
		if err := h.Publisher.PublishEnrollmentConfirmed(ctx, ev); err != nil {
			h.Log.Warn().Err(err).Uint64("activity_id", activityID).Msg("enrollment event publish failed")
		}
	}()
}

// Leave handles DELETE /activities/:id/sair. Leaving frees the spot
// immediately; a user who was never enrolled gets a 404 rather than a
// silent success.
func (h *EnrollmentHandler) Leave(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "não autenticado")
	}
	activityID, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, kindValidation, "id inválido")
	}
	if err := h.Enrollments.Leave(c.Request().Context(), userID, activityID); err != nil {
		if errors.Is(err, repository.ErrNotEnrolled) {
			return fail(c, http.StatusNotFound, kindNotFound, "você não está inscrito nesta atividade")
		}
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao cancelar inscrição")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "inscrição cancelada"})
}

// Status handles GET /activities/:id/status: whether the caller is enrolled.
func (h *EnrollmentHandler) Status(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "não autenticado")
	}
	activityID, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, kindValidation, "id inválido")
	}
	enrolled, err := h.Enrollments.IsEnrolled(c.Request().Context(), userID, activityID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao consultar inscrição")
	}
	return c.JSON(http.StatusOK, echo.Map{"inscrito": enrolled})
}
