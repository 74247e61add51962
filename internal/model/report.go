package model

// StudentSubjectGrades is one row of the per-student report: the student's
// slots and average in one subject. Every subject in the system produces a
// row, even when the student has no grade record for it — absence of data
// is represented (all-nil slots, nil promedio), not hidden.
type StudentSubjectGrades struct {
	SubjectID string   `json:"materia_id"`
	Materia   string   `json:"materia"`
	Nota1     *float64 `json:"nota1"`
	Nota2     *float64 `json:"nota2"`
	Nota3     *float64 `json:"nota3"`
	Promedio  *float64 `json:"promedio"`
}

// StudentReport is the full per-student view: one row per subject ordered by
// subject name, plus the overall average across the non-nil row averages.
type StudentReport struct {
	Notas           []StudentSubjectGrades `json:"notas"`
	PromedioGeneral *float64               `json:"promedio_general"`
}

// SubjectStudentGrades is one row of the per-subject report: one student's
// slots and average in that subject. Every student appears, graded or not.
type SubjectStudentGrades struct {
	StudentID string   `json:"alumno_id"`
	Nombre    string   `json:"nombre"`
	Apellido  string   `json:"apellido"`
	Nota1     *float64 `json:"nota1"`
	Nota2     *float64 `json:"nota2"`
	Nota3     *float64 `json:"nota3"`
	Promedio  *float64 `json:"promedio"`
}

// SubjectReport is the full per-subject view, ordered by (apellido, nombre),
// plus the subject-wide average across the non-nil per-student averages.
type SubjectReport struct {
	Alumnos         []SubjectStudentGrades `json:"alumnos"`
	PromedioMateria *float64               `json:"promedio_materia"`
}
