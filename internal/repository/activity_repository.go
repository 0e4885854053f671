package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vamosjogar/sports-meetup-api/internal/model"
)

// ActivityRepo manages persistence for activities.  It is the only component
// that mutates activity rows; enrollment rows are owned by EnrollmentRepo.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo constructs an ActivityRepo with the given DB handle.
func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Create inserts a new activity and populates the generated ID and the
// DB-default timestamps on the given struct.  Field validation (capacity,
// future schedule) happens in the handler before this call.
func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	const q = `INSERT INTO atividades (id_usuario, esporte, titulo, local, latitude, longitude, data_hora, vagas)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		a.OwnerID, a.Esporte, a.Titulo, a.Local, a.Latitude, a.Longitude, a.DataHora.UTC(), a.Vagas)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM atividades WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, a.ID).Scan(&a.CreatedAt, &a.UpdatedAt)
}

// UpdateByIDAndOwner rewrites the mutable fields of an activity, enforcing
// ownership in the WHERE clause: when the row does not exist OR belongs to a
// different user the result is the same ErrActivityNotFound, so callers
// cannot distinguish "not mine" from "not there".
//
// The whole update runs in one transaction with the activity row locked
// (FOR UPDATE), because shrinking Vagas races against concurrent joins: the
// new capacity must be checked against the enrollment count under the same
// lock a join takes before inserting.  A reduction below the current count
// fails with *CapacityBelowEnrolledError carrying that count.
func (r *ActivityRepo) UpdateByIDAndOwner(ctx context.Context, a *model.Activity, ownerID uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM atividades WHERE id = ? AND id_usuario = ? FOR UPDATE`,
		a.ID, ownerID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrActivityNotFound // missing or owned by someone else
		}
		return err
	}

	var enrolled int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participacoes WHERE id_atividade = ?`, a.ID).Scan(&enrolled); err != nil {
		return err
	}
	if a.Vagas < enrolled {
		err = &CapacityBelowEnrolledError{Enrolled: enrolled}
		return err
	}

	const q = `UPDATE atividades
	           SET esporte = ?, titulo = ?, local = ?, latitude = ?, longitude = ?, data_hora = ?, vagas = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND id_usuario = ?`
	_, err = tx.ExecContext(ctx, q,
		a.Esporte, a.Titulo, a.Local, a.Latitude, a.Longitude, a.DataHora.UTC(), a.Vagas,
		a.ID, ownerID)
	return err
}

// DeleteByIDAndOwner removes an activity together with every enrollment on
// it, as one atomic cascade.  Ownership is enforced the same way as in
// UpdateByIDAndOwner: a missing row and a foreign owner both come back as
// ErrActivityNotFound.
func (r *ActivityRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM atividades WHERE id = ? AND id_usuario = ? FOR UPDATE`,
		id, ownerID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrActivityNotFound
		}
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM participacoes WHERE id_atividade = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM atividades WHERE id = ?`, id)
	return err
}
