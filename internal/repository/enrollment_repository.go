package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// EnrollmentRepo owns the 'participacoes' table: the ledger of who is
// enrolled in what.  Join and Leave are the only write paths into the
// ledger besides the cascading delete in ActivityRepo.
type EnrollmentRepo struct {
	db *sql.DB
}

// NewEnrollmentRepo returns an EnrollmentRepo bound to the given database.
func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo { return &EnrollmentRepo{db: db} }

// Join enrolls a user into an activity and returns the number of seats left
// after the insert.  The whole check-then-insert sequence runs in a single
// transaction that locks the activity row with SELECT ... FOR UPDATE, so two
// concurrent joins on the same activity serialize: the second one re-reads
// the count after the first commits and sees the seat gone.  Without the row
// lock both could observe one free seat and both insert, breaking the
// capacity invariant.
//
// Preconditions are checked in a fixed order and each violation maps to its
// own sentinel so the handler can report a distinct failure:
//
//	activity exists        -> ErrActivityNotFound
//	scheduled in future    -> ErrActivityExpired
//	caller is not owner    -> ErrOwnActivity
//	no existing enrollment -> ErrAlreadyEnrolled
//	a seat is free         -> ErrActivityFull
func (r *EnrollmentRepo) Join(ctx context.Context, userID, activityID uint64) (remaining int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var (
		ownerID  uint64
		dataHora time.Time
		vagas    int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id_usuario, data_hora, vagas FROM atividades WHERE id = ? FOR UPDATE`,
		activityID).Scan(&ownerID, &dataHora, &vagas)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrActivityNotFound
		}
		return 0, err
	}
	if !dataHora.After(time.Now().UTC()) {
		err = ErrActivityExpired
		return 0, err
	}
	if ownerID == userID {
		err = ErrOwnActivity
		return 0, err
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM participacoes WHERE id_usuario = ? AND id_atividade = ? LIMIT 1`,
		userID, activityID).Scan(&exists)
	if err == nil {
		err = ErrAlreadyEnrolled
		return 0, err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	err = nil

	var enrolled int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participacoes WHERE id_atividade = ?`,
		activityID).Scan(&enrolled); err != nil {
		return 0, err
	}
	if enrolled >= vagas {
		err = ErrActivityFull
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO participacoes (id_usuario, id_atividade) VALUES (?, ?)`,
		userID, activityID); err != nil {
		// The unique (id_usuario, id_atividade) index is the backstop for a
		// duplicate that slipped past the existence check.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			err = ErrAlreadyEnrolled
		}
		return 0, err
	}
	return vagas - enrolled - 1, nil
}

// Leave removes the caller's enrollment.  Deleting only ever frees a seat,
// so no coordination beyond the single delete statement is needed; zero rows
// affected means there was nothing to remove.
func (r *EnrollmentRepo) Leave(ctx context.Context, userID, activityID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM participacoes WHERE id_usuario = ? AND id_atividade = ?`,
		userID, activityID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotEnrolled
	}
	return nil
}

// IsEnrolled reports whether an enrollment exists for the pair.
func (r *EnrollmentRepo) IsEnrolled(ctx context.Context, userID, activityID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM participacoes WHERE id_usuario = ? AND id_atividade = ? LIMIT 1`,
		userID, activityID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Participants returns the public participant list of an activity in
// enrollment order, or ErrActivityNotFound for an unknown id.  A deleted
// activity therefore reports not-found rather than an empty, stale list.
func (r *EnrollmentRepo) Participants(ctx context.Context, activityID uint64) ([]Participant, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM atividades WHERE id = ? LIMIT 1`, activityID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	const q = `SELECT u.nome, p.data_inscricao
	           FROM participacoes p
	           JOIN usuarios u ON u.id = p.id_usuario
	           WHERE p.id_atividade = ?
	           ORDER BY p.data_inscricao ASC, p.id ASC`
	rows, err := r.db.QueryContext(ctx, q, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]Participant, 0)
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.Nome, &p.DataInscricao); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
