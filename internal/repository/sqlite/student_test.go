package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/model"
)

func TestCreateStudent(t *testing.T) {
	db := newTestDB(t)

	s := &model.Student{Nombre: "Ana", Apellido: "García", DNI: "30111222"}
	if err := db.CreateStudent(context.Background(), s); err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}

	if s.ID == "" {
		t.Error("CreateStudent() did not set ID")
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		t.Error("CreateStudent() did not set timestamps")
	}

	got, err := db.GetStudentByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetStudentByID() error = %v", err)
	}
	if got.DNI != "30111222" {
		t.Errorf("DNI = %q, want %q", got.DNI, "30111222")
	}
}

func TestCreateStudent_DuplicateDNI(t *testing.T) {
	db := newTestDB(t)
	createTestStudent(t, db, "Ana", "García", "30111222")

	err := db.CreateStudent(context.Background(), &model.Student{
		Nombre: "Otro", Apellido: "Alumno", DNI: "30111222",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateStudent() error = %v, want ErrConflict", err)
	}

	// The failed insert must not have written a row.
	students, err := db.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("ListStudents() error = %v", err)
	}
	if len(students) != 1 {
		t.Errorf("len(students) = %d, want 1", len(students))
	}
}

func TestGetStudentByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetStudentByID(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetStudentByID() error = %v, want ErrNotFound", err)
	}
}

func TestListStudents_OrderedByApellidoNombre(t *testing.T) {
	db := newTestDB(t)
	createTestStudent(t, db, "Carla", "Zapata", "1")
	createTestStudent(t, db, "Bruno", "Acosta", "2")
	createTestStudent(t, db, "Ana", "Acosta", "3")

	students, err := db.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("ListStudents() error = %v", err)
	}

	var got []string
	for _, s := range students {
		got = append(got, s.Apellido+" "+s.Nombre)
	}
	want := []string{"Acosta Ana", "Acosta Bruno", "Zapata Carla"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("students[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUpdateStudent_PartialKeepsOtherFields(t *testing.T) {
	db := newTestDB(t)
	s := createTestStudent(t, db, "Ana", "García", "30111222")

	// Only the apellido changes; nombre and dni must survive untouched.
	updated, err := db.UpdateStudent(context.Background(), s.ID, model.StudentUpdate{
		Apellido: strv("Gutiérrez"),
	})
	if err != nil {
		t.Fatalf("UpdateStudent() error = %v", err)
	}

	if updated.Apellido != "Gutiérrez" {
		t.Errorf("Apellido = %q, want %q", updated.Apellido, "Gutiérrez")
	}
	if updated.Nombre != "Ana" {
		t.Errorf("Nombre = %q, want unchanged %q", updated.Nombre, "Ana")
	}
	if updated.DNI != "30111222" {
		t.Errorf("DNI = %q, want unchanged %q", updated.DNI, "30111222")
	}
}

func TestUpdateStudent_OwnDNIIsNotAConflict(t *testing.T) {
	db := newTestDB(t)
	s := createTestStudent(t, db, "Ana", "García", "30111222")

	// Re-submitting the student's current DNI must succeed.
	if _, err := db.UpdateStudent(context.Background(), s.ID, model.StudentUpdate{
		DNI: strv("30111222"),
	}); err != nil {
		t.Errorf("UpdateStudent() with own DNI: %v", err)
	}
}

func TestUpdateStudent_DNITakenByOther(t *testing.T) {
	db := newTestDB(t)
	createTestStudent(t, db, "Ana", "García", "30111222")
	other := createTestStudent(t, db, "Bruno", "Acosta", "28999000")

	_, err := db.UpdateStudent(context.Background(), other.ID, model.StudentUpdate{
		DNI: strv("30111222"),
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("UpdateStudent() error = %v, want ErrConflict", err)
	}

	// The conflicting update must not have changed the row.
	got, err := db.GetStudentByID(context.Background(), other.ID)
	if err != nil {
		t.Fatalf("GetStudentByID() error = %v", err)
	}
	if got.DNI != "28999000" {
		t.Errorf("DNI = %q, want unchanged %q", got.DNI, "28999000")
	}
}

func TestUpdateStudent_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.UpdateStudent(context.Background(), "nope", model.StudentUpdate{
		Nombre: strv("X"),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateStudent() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteStudent(t *testing.T) {
	db := newTestDB(t)
	s := createTestStudent(t, db, "Ana", "García", "30111222")

	if err := db.DeleteStudent(context.Background(), s.ID); err != nil {
		t.Fatalf("DeleteStudent() error = %v", err)
	}

	if _, err := db.GetStudentByID(context.Background(), s.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetStudentByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteStudent_NotFound(t *testing.T) {
	db := newTestDB(t)

	// Deleting a nonexistent id is an error, not a silent success.
	if err := db.DeleteStudent(context.Background(), "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteStudent() error = %v, want ErrNotFound", err)
	}
}
