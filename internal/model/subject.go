package model

import "time"

// Subject is a "materia" record. Codigo is the course code and is unique
// across subjects; Anio is the curriculum year the course belongs to.
type Subject struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Codigo    string    `json:"codigo"`
	Anio      int       `json:"anio"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubjectUpdate carries a partial update; nil fields keep the stored value.
type SubjectUpdate struct {
	Nombre *string
	Codigo *string
	Anio   *int
}
