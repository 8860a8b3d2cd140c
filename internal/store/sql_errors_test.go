package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/mattn/go-sqlite3"
)

func TestClassifyPgCode(t *testing.T) {
	tests := []struct {
		code string
		want ErrorClassification
	}{
		{pgerrcode.SerializationFailure, Retryable},
		{pgerrcode.DeadlockDetected, Retryable},
		{pgerrcode.ConnectionFailure, Retryable},
		{pgerrcode.CannotConnectNow, Retryable},
		{pgerrcode.UniqueViolation, NonRetryable},
		{pgerrcode.SyntaxError, NonRetryable},
		{"XX000", NonRetryable},
	}
	for _, tt := range tests {
		if got := ClassifyPgCode(tt.code); got != tt.want {
			t.Errorf("ClassifyPgCode(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestPostgresErrorClassifier(t *testing.T) {
	c := NewPostgresErrorClassifier()

	wrapped := fmt.Errorf("%w: %w", ErrExecutingStatement, pgError(pgerrcode.UniqueViolation))
	if !c.IsUniqueViolation(wrapped) {
		t.Error("expected wrapped unique violation to be detected")
	}
	if c.IsForeignKeyViolation(wrapped) {
		t.Error("unique violation reported as foreign key violation")
	}
	if !c.IsForeignKeyViolation(pgError(pgerrcode.ForeignKeyViolation)) {
		t.Error("expected foreign key violation to be detected")
	}
	if c.Classify(errors.New("plain")) != NonRetryable {
		t.Error("non-driver errors must be non-retryable")
	}
}

func TestSQLiteErrorClassifier(t *testing.T) {
	c := NewSQLiteErrorClassifier()

	unique := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	pk := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}
	fk := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}

	if !c.IsUniqueViolation(fmt.Errorf("wrap: %w", unique)) || !c.IsUniqueViolation(pk) {
		t.Error("expected unique and primary key violations to be detected")
	}
	if !c.IsForeignKeyViolation(fk) || c.IsForeignKeyViolation(unique) {
		t.Error("foreign key detection is wrong")
	}
	if c.Classify(busy) != Retryable {
		t.Error("SQLITE_BUSY must be retryable")
	}
	if c.Classify(unique) != NonRetryable {
		t.Error("constraint errors must be non-retryable")
	}
}

func TestDialectFromDSN(t *testing.T) {
	tests := map[string]Dialect{
		"postgres://u:p@localhost:5432/db":   DialectPostgres,
		"postgresql://u:p@localhost:5432/db": DialectPostgres,
		"file:secrets.db":                    DialectSQLite,
		"/var/lib/keeper/keeper.db":          DialectSQLite,
	}
	for dsn, want := range tests {
		if got := DialectFromDSN(dsn); got != want {
			t.Errorf("DialectFromDSN(%q) = %s, want %s", dsn, got, want)
		}
	}
}
