package sqlite

import (
	"context"
	"testing"

	"github.com/mnavarro/notas-api/internal/model"
)

// newTestDB opens an in-memory database: fast, isolated, destroyed when
// the connection closes. t.Cleanup handles the close even in subtests.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestStudent(t *testing.T, db *DB, nombre, apellido, dni string) *model.Student {
	t.Helper()
	s := &model.Student{Nombre: nombre, Apellido: apellido, DNI: dni}
	if err := db.CreateStudent(context.Background(), s); err != nil {
		t.Fatalf("failed to create test student: %v", err)
	}
	return s
}

func createTestSubject(t *testing.T, db *DB, nombre, codigo string, anio int) *model.Subject {
	t.Helper()
	s := &model.Subject{Nombre: nombre, Codigo: codigo, Anio: anio}
	if err := db.CreateSubject(context.Background(), s); err != nil {
		t.Fatalf("failed to create test subject: %v", err)
	}
	return s
}

// fv takes the address of a literal, for grade slots in test tables.
func fv(v float64) *float64 { return &v }

// strv likewise for partial-update fields.
func strv(s string) *string { return &s }
