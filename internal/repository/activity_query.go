package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ActivityDetail is the read model returned by the browse queries.  It
// carries the stored activity fields plus the live seat numbers and the
// organizer's display name, all resolved in a single aggregating query per
// request (never one count query per activity).  VagasDisponiveis and Lotada
// are derived from capacity and the enrollment count at read time; they are
// never stored.
type ActivityDetail struct {
	ID                 uint64    `json:"id"`
	OwnerID            uint64    `json:"id_usuario"`
	Esporte            string    `json:"esporte"`
	Titulo             string    `json:"titulo"`
	Local              string    `json:"local"`
	Latitude           *float64  `json:"latitude,omitempty"`
	Longitude          *float64  `json:"longitude,omitempty"`
	DataHora           time.Time `json:"data_hora"`
	Vagas              int       `json:"vagas"`
	ParticipantesCount int       `json:"participantes_count"`
	VagasDisponiveis   int       `json:"vagas_disponiveis"`
	Lotada             bool      `json:"lotada"`
	CriadorNome        string    `json:"criador_nome"`
}

// Participant is one row of the public participant list: a display name and
// the moment the enrollment was confirmed, ordered by that moment.
type Participant struct {
	Nome          string    `json:"nome"`
	DataInscricao time.Time `json:"data_inscricao"`
}

// detailColumns joins activities with their organizer and a grouped
// enrollment count.  The LEFT JOIN keeps activities with zero enrollments.
const detailColumns = `
	SELECT a.id, a.id_usuario, a.esporte, a.titulo, a.local, a.latitude, a.longitude,
	       a.data_hora, a.vagas, COALESCE(p.cnt, 0), u.nome
	FROM atividades a
	JOIN usuarios u ON u.id = a.id_usuario
	LEFT JOIN (
		SELECT id_atividade, COUNT(*) AS cnt
		FROM participacoes
		GROUP BY id_atividade
	) p ON p.id_atividade = a.id`

// ListUpcoming returns activities whose scheduled time is still in the
// future, soonest first.  esporte filters by exact sport tag; the "Todos"
// sentinel (or an empty string) disables the filter.
func (r *ActivityRepo) ListUpcoming(ctx context.Context, esporte string) ([]ActivityDetail, error) {
	q := detailColumns + ` WHERE a.data_hora > UTC_TIMESTAMP()`
	args := []any{}
	if esporte != "" && esporte != "Todos" {
		q += ` AND a.esporte = ?`
		args = append(args, esporte)
	}
	q += ` ORDER BY a.data_hora ASC`
	return r.queryDetails(ctx, q, args...)
}

// ListByOwner returns the activities created by one user, most recent
// schedule first.  This is the organizer's management view, so expired
// activities are included.
func (r *ActivityRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]ActivityDetail, error) {
	q := detailColumns + ` WHERE a.id_usuario = ? ORDER BY a.data_hora DESC`
	return r.queryDetails(ctx, q, ownerID)
}

// GetDetail returns a single annotated activity or ErrActivityNotFound.
func (r *ActivityRepo) GetDetail(ctx context.Context, id uint64) (*ActivityDetail, error) {
	q := detailColumns + ` WHERE a.id = ?`
	var d ActivityDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.OwnerID, &d.Esporte, &d.Titulo, &d.Local, &d.Latitude, &d.Longitude,
		&d.DataHora, &d.Vagas, &d.ParticipantesCount, &d.CriadorNome,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	d.derive()
	return &d, nil
}

func (r *ActivityRepo) queryDetails(ctx context.Context, q string, args ...any) ([]ActivityDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ActivityDetail, 0)
	for rows.Next() {
		var d ActivityDetail
		if err := rows.Scan(
			&d.ID, &d.OwnerID, &d.Esporte, &d.Titulo, &d.Local, &d.Latitude, &d.Longitude,
			&d.DataHora, &d.Vagas, &d.ParticipantesCount, &d.CriadorNome,
		); err != nil {
			return nil, err
		}
		d.derive()
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// derive fills the computed fields from capacity and enrollment count.
// Available seats never go below zero even if an operator shrinks capacity
// by hand in the database.
func (d *ActivityDetail) derive() {
	d.VagasDisponiveis = d.Vagas - d.ParticipantesCount
	if d.VagasDisponiveis < 0 {
		d.VagasDisponiveis = 0
	}
	d.Lotada = d.VagasDisponiveis == 0
}
