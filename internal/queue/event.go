// Package queue defines message payloads exchanged over the message broker.
package queue

// EnrollmentConfirmedEvent is published whenever a user secures a spot in an
// activity. It carries enough context for downstream consumers to log or
// notify without going back to the primary database.
type EnrollmentConfirmedEvent struct {
	ActivityID     uint64 `json:"activity_id"`
	ActivityTitulo string `json:"activity_titulo"`
	Esporte        string `json:"esporte"`
	UserID         uint64 `json:"user_id"`
	UserNome       string `json:"user_nome"`
	DataHora       string `json:"data_hora"`
	VagasRestantes int    `json:"vagas_restantes"`
	ConfirmedAt    string `json:"confirmed_at"`
}
