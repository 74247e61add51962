package model

import "time"

// Student is an "alumno" record.
//
// The JSON field names stay in Spanish (nombre, apellido, dni): the wire
// contract predates this implementation and existing clients depend on it.
// Only the Go identifiers are English.
//
// DNI is the national identity number and is unique across students. It is
// stored as TEXT, not a number — DNIs are identifiers, not quantities, and
// leading zeros must survive a round trip.
type Student struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Apellido  string    `json:"apellido"`
	DNI       string    `json:"dni"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudentUpdate carries a partial update. A nil field means "keep the stored
// value" — the repository turns this into COALESCE semantics so PUT requests
// can send only the fields that change.
type StudentUpdate struct {
	Nombre   *string
	Apellido *string
	DNI      *string
}
