package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/model"
)

// mockStore is one in-memory implementation of the student, subject, and
// grade repositories — the same shape the real SQLite type has. Grades are
// keyed by (student, subject) so the uniqueness invariant holds by
// construction, and the list methods emulate the left-join the store
// performs.
type mockStore struct {
	students map[string]*model.Student
	subjects map[string]*model.Subject
	grades   map[string]*model.Grade // key: studentID + "/" + subjectID
	nextID   int
}

func newMockStore() *mockStore {
	return &mockStore{
		students: make(map[string]*model.Student),
		subjects: make(map[string]*model.Subject),
		grades:   make(map[string]*model.Grade),
	}
}

func (m *mockStore) id() string {
	m.nextID++
	return fmt.Sprintf("mock-%d", m.nextID)
}

func gradeKey(studentID, subjectID string) string { return studentID + "/" + subjectID }

// --- StudentRepository ---

func (m *mockStore) ListStudents(_ context.Context) ([]model.Student, error) {
	out := make([]model.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Apellido != out[j].Apellido {
			return out[i].Apellido < out[j].Apellido
		}
		return out[i].Nombre < out[j].Nombre
	})
	return out, nil
}

func (m *mockStore) GetStudentByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, apperror.NotFound("Alumno no encontrado")
}

func (m *mockStore) CreateStudent(_ context.Context, s *model.Student) error {
	for _, other := range m.students {
		if other.DNI == s.DNI {
			return apperror.Conflict("DNI ya registrado")
		}
	}
	s.ID = m.id()
	cp := *s
	m.students[s.ID] = &cp
	return nil
}

func (m *mockStore) UpdateStudent(_ context.Context, id string, upd model.StudentUpdate) (*model.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, apperror.NotFound("Alumno no encontrado")
	}
	if upd.Nombre != nil {
		s.Nombre = *upd.Nombre
	}
	if upd.Apellido != nil {
		s.Apellido = *upd.Apellido
	}
	if upd.DNI != nil {
		for otherID, other := range m.students {
			if otherID != id && other.DNI == *upd.DNI {
				return nil, apperror.Conflict("DNI ya en uso por otro alumno")
			}
		}
		s.DNI = *upd.DNI
	}
	cp := *s
	return &cp, nil
}

func (m *mockStore) DeleteStudent(_ context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return apperror.NotFound("Alumno no encontrado")
	}
	delete(m.students, id)
	return nil
}

// --- SubjectRepository ---

func (m *mockStore) ListSubjects(_ context.Context) ([]model.Subject, error) {
	out := make([]model.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (m *mockStore) GetSubjectByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, apperror.NotFound("Materia no encontrada")
}

func (m *mockStore) CreateSubject(_ context.Context, s *model.Subject) error {
	for _, other := range m.subjects {
		if other.Codigo == s.Codigo {
			return apperror.Conflict("Codigo ya registrado")
		}
	}
	s.ID = m.id()
	cp := *s
	m.subjects[s.ID] = &cp
	return nil
}

func (m *mockStore) UpdateSubject(_ context.Context, id string, upd model.SubjectUpdate) (*model.Subject, error) {
	s, ok := m.subjects[id]
	if !ok {
		return nil, apperror.NotFound("Materia no encontrada")
	}
	if upd.Nombre != nil {
		s.Nombre = *upd.Nombre
	}
	if upd.Codigo != nil {
		for otherID, other := range m.subjects {
			if otherID != id && other.Codigo == *upd.Codigo {
				return nil, apperror.Conflict("Codigo ya en uso")
			}
		}
		s.Codigo = *upd.Codigo
	}
	if upd.Anio != nil {
		s.Anio = *upd.Anio
	}
	cp := *s
	return &cp, nil
}

func (m *mockStore) DeleteSubject(_ context.Context, id string) error {
	if _, ok := m.subjects[id]; !ok {
		return apperror.NotFound("Materia no encontrada")
	}
	delete(m.subjects, id)
	return nil
}

// --- GradeRepository ---

func (m *mockStore) UpsertGrade(_ context.Context, g *model.Grade) (bool, error) {
	key := gradeKey(g.StudentID, g.SubjectID)
	existing, ok := m.grades[key]
	if ok {
		existing.Nota1, existing.Nota2, existing.Nota3 = g.Nota1, g.Nota2, g.Nota3
		g.ID = existing.ID
		return false, nil
	}
	g.ID = m.id()
	cp := *g
	m.grades[key] = &cp
	return true, nil
}

func (m *mockStore) ListGradesByStudent(_ context.Context, studentID string) ([]model.StudentSubjectGrades, error) {
	subjects, _ := m.ListSubjects(context.Background())
	out := make([]model.StudentSubjectGrades, 0, len(subjects))
	for _, sub := range subjects {
		row := model.StudentSubjectGrades{SubjectID: sub.ID, Materia: sub.Nombre}
		if g, ok := m.grades[gradeKey(studentID, sub.ID)]; ok {
			row.Nota1, row.Nota2, row.Nota3 = g.Nota1, g.Nota2, g.Nota3
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *mockStore) ListGradesBySubject(_ context.Context, subjectID string) ([]model.SubjectStudentGrades, error) {
	students, _ := m.ListStudents(context.Background())
	out := make([]model.SubjectStudentGrades, 0, len(students))
	for _, st := range students {
		row := model.SubjectStudentGrades{StudentID: st.ID, Nombre: st.Nombre, Apellido: st.Apellido}
		if g, ok := m.grades[gradeKey(st.ID, subjectID)]; ok {
			row.Nota1, row.Nota2, row.Nota3 = g.Nota1, g.Nota2, g.Nota3
		}
		out = append(out, row)
	}
	return out, nil
}

// --- fixtures ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newGradeFixture(t *testing.T) (*GradeService, *mockStore, string, string) {
	t.Helper()
	store := newMockStore()
	svc := NewGradeService(store, store, store, testLogger())

	alumno := &model.Student{Nombre: "Ana", Apellido: "García", DNI: "30111222"}
	if err := store.CreateStudent(context.Background(), alumno); err != nil {
		t.Fatalf("seeding student: %v", err)
	}
	materia := &model.Subject{Nombre: "Matemática", Codigo: "MAT1", Anio: 2024}
	if err := store.CreateSubject(context.Background(), materia); err != nil {
		t.Fatalf("seeding subject: %v", err)
	}
	return svc, store, alumno.ID, materia.ID
}

func fp(v float64) *float64 { return &v }

// --- upsert tests ---

func TestGradeUpsert_CreatedThenUpdated(t *testing.T) {
	svc, _, alumnoID, materiaID := newGradeFixture(t)

	grade, created, err := svc.Upsert(context.Background(), GradeInput{
		StudentID: alumnoID, SubjectID: materiaID, Nota1: fp(8), Nota3: fp(6),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !created {
		t.Error("first Upsert() reported created = false")
	}
	if grade.Promedio == nil || *grade.Promedio != 7 {
		t.Errorf("Promedio = %v, want 7.00", grade.Promedio)
	}

	grade, created, err = svc.Upsert(context.Background(), GradeInput{
		StudentID: alumnoID, SubjectID: materiaID, Nota1: fp(10), Nota2: fp(10), Nota3: fp(10),
	})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if created {
		t.Error("second Upsert() reported created = true")
	}
	if grade.Promedio == nil || *grade.Promedio != 10 {
		t.Errorf("Promedio = %v, want 10.00", grade.Promedio)
	}
}

func TestGradeUpsert_EmptySubmissionHasNilPromedio(t *testing.T) {
	svc, _, alumnoID, materiaID := newGradeFixture(t)

	grade, _, err := svc.Upsert(context.Background(), GradeInput{
		StudentID: alumnoID, SubjectID: materiaID,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if grade.Promedio != nil {
		t.Errorf("Promedio = %v, want nil for an all-empty row", *grade.Promedio)
	}
}

func TestGradeUpsert_OutOfRange(t *testing.T) {
	svc, store, alumnoID, materiaID := newGradeFixture(t)

	for _, bad := range []*float64{fp(-0.5), fp(10.01), fp(11)} {
		_, _, err := svc.Upsert(context.Background(), GradeInput{
			StudentID: alumnoID, SubjectID: materiaID, Nota2: bad,
		})
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Upsert(nota2=%v) error = %v, want ErrValidation", *bad, err)
		}
	}

	// Rejected submissions must not have written anything.
	if len(store.grades) != 0 {
		t.Errorf("store has %d grade rows after rejected submissions, want 0", len(store.grades))
	}
}

func TestGradeUpsert_BoundaryValuesAccepted(t *testing.T) {
	svc, _, alumnoID, materiaID := newGradeFixture(t)

	grade, _, err := svc.Upsert(context.Background(), GradeInput{
		StudentID: alumnoID, SubjectID: materiaID, Nota1: fp(0), Nota2: fp(10),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v — 0 and 10 are inside the range", err)
	}
	if grade.Promedio == nil || *grade.Promedio != 5 {
		t.Errorf("Promedio = %v, want 5.00", grade.Promedio)
	}
}

func TestGradeUpsert_UnknownStudent(t *testing.T) {
	svc, _, _, materiaID := newGradeFixture(t)

	_, _, err := svc.Upsert(context.Background(), GradeInput{
		StudentID: "no-such", SubjectID: materiaID, Nota1: fp(7),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Upsert() error = %v, want ErrNotFound", err)
	}
}

func TestGradeUpsert_UnknownSubject(t *testing.T) {
	svc, _, alumnoID, _ := newGradeFixture(t)

	_, _, err := svc.Upsert(context.Background(), GradeInput{
		StudentID: alumnoID, SubjectID: "no-such", Nota1: fp(7),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Upsert() error = %v, want ErrNotFound", err)
	}
}

// --- report tests ---

func TestReportByStudent(t *testing.T) {
	svc, store, alumnoID, materiaID := newGradeFixture(t)

	// A second subject the student has no grades in.
	fisica := &model.Subject{Nombre: "Física", Codigo: "FIS1", Anio: 2024}
	if err := store.CreateSubject(context.Background(), fisica); err != nil {
		t.Fatalf("seeding subject: %v", err)
	}

	if _, _, err := svc.Upsert(context.Background(), GradeInput{
		StudentID: alumnoID, SubjectID: materiaID, Nota1: fp(8), Nota2: fp(9),
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	report, err := svc.ReportByStudent(context.Background(), alumnoID)
	if err != nil {
		t.Fatalf("ReportByStudent() error = %v", err)
	}

	// One row per subject in the system, including the ungraded one.
	if len(report.Notas) != 2 {
		t.Fatalf("len(Notas) = %d, want 2", len(report.Notas))
	}

	byName := make(map[string]model.StudentSubjectGrades)
	for _, row := range report.Notas {
		byName[row.Materia] = row
	}

	mat := byName["Matemática"]
	if mat.Promedio == nil || *mat.Promedio != 8.5 {
		t.Errorf("Matemática promedio = %v, want 8.50", mat.Promedio)
	}

	fis := byName["Física"]
	if fis.Nota1 != nil || fis.Promedio != nil {
		t.Error("ungraded subject should carry nil slots and nil promedio")
	}

	// Overall average over the rows that HAVE an average: just 8.5.
	if report.PromedioGeneral == nil || *report.PromedioGeneral != 8.5 {
		t.Errorf("PromedioGeneral = %v, want 8.50", report.PromedioGeneral)
	}
}

func TestReportByStudent_NoGradesAtAll(t *testing.T) {
	svc, _, alumnoID, _ := newGradeFixture(t)

	report, err := svc.ReportByStudent(context.Background(), alumnoID)
	if err != nil {
		t.Fatalf("ReportByStudent() error = %v", err)
	}
	if len(report.Notas) != 1 {
		t.Fatalf("len(Notas) = %d, want 1 (every subject appears)", len(report.Notas))
	}
	if report.PromedioGeneral != nil {
		t.Errorf("PromedioGeneral = %v, want nil", *report.PromedioGeneral)
	}
}

func TestReportByStudent_UnknownStudent(t *testing.T) {
	svc, _, _, _ := newGradeFixture(t)

	if _, err := svc.ReportByStudent(context.Background(), "no-such"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ReportByStudent() error = %v, want ErrNotFound", err)
	}
}

func TestReportBySubject(t *testing.T) {
	svc, store, alumnoID, materiaID := newGradeFixture(t)

	// A second student, ungraded in this subject.
	bruno := &model.Student{Nombre: "Bruno", Apellido: "Acosta", DNI: "28999000"}
	if err := store.CreateStudent(context.Background(), bruno); err != nil {
		t.Fatalf("seeding student: %v", err)
	}

	if _, _, err := svc.Upsert(context.Background(), GradeInput{
		StudentID: alumnoID, SubjectID: materiaID, Nota1: fp(6), Nota2: fp(7), Nota3: fp(8),
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	report, err := svc.ReportBySubject(context.Background(), materiaID)
	if err != nil {
		t.Fatalf("ReportBySubject() error = %v", err)
	}

	if len(report.Alumnos) != 2 {
		t.Fatalf("len(Alumnos) = %d, want 2", len(report.Alumnos))
	}

	// Ordered by apellido: Acosta (ungraded) before García.
	if report.Alumnos[0].Apellido != "Acosta" {
		t.Errorf("first row apellido = %q, want Acosta", report.Alumnos[0].Apellido)
	}
	if report.Alumnos[0].Promedio != nil {
		t.Error("ungraded student should have nil promedio")
	}
	if report.Alumnos[1].Promedio == nil || *report.Alumnos[1].Promedio != 7 {
		t.Errorf("García promedio = %v, want 7.00", report.Alumnos[1].Promedio)
	}

	// Subject average over the one non-nil promedio.
	if report.PromedioMateria == nil || *report.PromedioMateria != 7 {
		t.Errorf("PromedioMateria = %v, want 7.00", report.PromedioMateria)
	}
}

func TestReportBySubject_UnknownSubject(t *testing.T) {
	svc, _, _, _ := newGradeFixture(t)

	if _, err := svc.ReportBySubject(context.Background(), "no-such"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ReportBySubject() error = %v, want ErrNotFound", err)
	}
}
