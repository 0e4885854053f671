package handler // handler defines the HTTP layer over the data stores

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vamosjogar/sports-meetup-api/internal/model"
	"github.com/vamosjogar/sports-meetup-api/internal/repository"
)

// Error kinds returned in the "error" field of every failure response.  The
// body always carries the machine-readable kind plus a human message:
//
//	{"error": "capacity_exceeded", "message": "atividade lotada"}
const (
	kindValidation       = "validation"
	kindConflict         = "conflict"
	kindNotFound         = "not_found"
	kindCapacityExceeded = "capacity_exceeded"
	kindUnauthorized     = "unauthorized"
	kindInternal         = "internal"
)

// fail writes the uniform error envelope.
func fail(c echo.Context, status int, kind, msg string) error {
	return c.JSON(status, echo.Map{"error": kind, "message": msg})
}

// ActivityStore is the slice of the repository layer the activity handlers
// need.  *repository.ActivityRepo satisfies it; tests substitute an
// in-memory fake.
type ActivityStore interface {
	Create(ctx context.Context, a *model.Activity) error
	UpdateByIDAndOwner(ctx context.Context, a *model.Activity, ownerID uint64) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
	ListUpcoming(ctx context.Context, esporte string) ([]repository.ActivityDetail, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]repository.ActivityDetail, error)
	GetDetail(ctx context.Context, id uint64) (*repository.ActivityDetail, error)
}

// EnrollmentStore is the ledger surface used by the enrollment handlers.
// *repository.EnrollmentRepo satisfies it.
type EnrollmentStore interface {
	Join(ctx context.Context, userID, activityID uint64) (int, error)
	Leave(ctx context.Context, userID, activityID uint64) error
	IsEnrolled(ctx context.Context, userID, activityID uint64) (bool, error)
	Participants(ctx context.Context, activityID uint64) ([]repository.Participant, error)
}

// UserStore is the credential surface used by the auth handler.
// *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, nome, email, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RefreshTokenStore persists refresh token hashes.
// *repository.TokenRepo satisfies it.
type RefreshTokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// getUserID extracts the user_id set by the JWT middleware and converts it
// to uint64.  JWT numeric claims decode as float64, hence the cases.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the :id path parameter; zero is never a valid row id.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
