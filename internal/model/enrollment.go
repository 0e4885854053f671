package model

import "time"

// Enrollment links one user to one activity in the `participacoes` table.
// It is the source of truth for "who is in": seat availability is always
// recomputed by counting these rows, never cached.  A (UserID, ActivityID)
// pair is unique; rows are created only by the join operation and removed by
// leave or by the cascading delete of the activity.
//
// Fields:
//
//	ID            – primary key identifier.
//	UserID        – enrolled user.
//	ActivityID    – activity joined.
//	DataInscricao – when the enrollment was confirmed.
type Enrollment struct {
	ID            uint64    // participacoes.id
	UserID        uint64    // participacoes.id_usuario
	ActivityID    uint64    // participacoes.id_atividade
	DataInscricao time.Time // participacoes.data_inscricao
}
