package model

import "time"

// Activity represents an organized sporting activity as stored in the
// `atividades` table.  The organizer (OwnerID) publishes the activity with a
// fixed number of seats (Vagas); other users enroll until the seats run out.
//
// Fields:
//
//	ID        – primary key identifier.
//	OwnerID   – user who created the activity and holds mutation rights.
//	Esporte   – sport tag used for exact-match filtering.
//	Titulo    – short human title.
//	Local     – free-text location descriptor.
//	Latitude  – optional map coordinate (presentational only).
//	Longitude – optional map coordinate (presentational only).
//	DataHora  – scheduled start, strictly in the future at creation.
//	Vagas     – seat capacity, always >= 2.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Activity struct {
	ID        uint64    // atividades.id
	OwnerID   uint64    // atividades.id_usuario
	Esporte   string    // atividades.esporte
	Titulo    string    // atividades.titulo
	Local     string    // atividades.local
	Latitude  *float64  // atividades.latitude (nullable)
	Longitude *float64  // atividades.longitude (nullable)
	DataHora  time.Time // atividades.data_hora (UTC)
	Vagas     int       // atividades.vagas
	CreatedAt time.Time // atividades.created_at
	UpdatedAt time.Time // atividades.updated_at
}

// Expired reports whether the activity's scheduled time has passed relative
// to now.  Expiry is a derived predicate, never a stored column, so there is
// no background job flipping state and no stale flag to trust.
func (a Activity) Expired(now time.Time) bool {
	return !a.DataHora.After(now)
}

// MinVagas is the smallest capacity an activity may declare.  A sporting
// activity with fewer than two seats cannot host anyone besides the
// organizer, who is barred from enrolling in their own activity.
const MinVagas = 2
