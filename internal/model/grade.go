package model

import (
	"math"
	"time"
)

// Grade holds the up-to-three scores one student has in one subject.
//
// There is at most ONE Grade row per (student, subject) pair — the storage
// layer enforces this with a unique index, and submissions are upserts that
// overwrite all three slots.
//
// WHY *float64 AND NOT float64?
// Each slot is genuinely optional: "no score yet" is different from "scored
// zero". A nil pointer is the only honest representation — a zero value
// would silently drag averages down. The pointers also serialize naturally:
// nil becomes JSON null, exactly what the API contract promises.
//
// Promedio is computed from the slots on the way out and never persisted.
// Storing it would be a denormalization that could drift out of sync with
// the slots; recomputing costs three additions.
type Grade struct {
	ID        string    `json:"id"`
	StudentID string    `json:"alumno_id"`
	SubjectID string    `json:"materia_id"`
	Nota1     *float64  `json:"nota1"`
	Nota2     *float64  `json:"nota2"`
	Nota3     *float64  `json:"nota3"`
	Promedio  *float64  `json:"promedio"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Recalc recomputes Promedio from the current slots.
func (g *Grade) Recalc() {
	g.Promedio = Promedio(g.Nota1, g.Nota2, g.Nota3)
}

// Promedio averages the non-nil slots, rounded to 2 decimal places.
//
// Returns nil when every slot is nil: "no scores" has no average. It is NOT
// zero — zero is a real (failing) grade, and it is not an error either,
// because an empty grade row is a legitimate state.
//
// Examples: (8, nil, 6) → 7.00; (nil, nil, nil) → nil.
func Promedio(notas ...*float64) *float64 {
	var sum float64
	var count int
	for _, n := range notas {
		if n != nil {
			sum += *n
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := round2(sum / float64(count))
	return &avg
}

// PromedioOf averages a list of already-computed averages, skipping nils.
// Used for the per-student overall average and the per-subject average,
// which are defined over the row averages — not over the raw slots.
func PromedioOf(promedios []*float64) *float64 {
	return Promedio(promedios...)
}

// round2 rounds half away from zero to 2 decimals, matching the rounding
// the API has always reported (e.g. 7.005 → 7.01).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
