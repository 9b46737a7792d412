package httperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsBusinessThroughWrapping(t *testing.T) {
	err := fmt.Errorf("reserve slot: %w", ErrBusiness("capacity_exceeded"))

	if !IsBusiness(err, "capacity_exceeded") {
		t.Fatal("expected wrapped business error to match")
	}
	if IsBusiness(err, "slot_unavailable") {
		t.Fatal("expected a different code not to match")
	}
	if !errors.Is(err, ErrBusiness("capacity_exceeded")) {
		t.Fatal("expected errors.Is to match equal business values")
	}
	if code, ok := CodeOf(err); !ok || code != "capacity_exceeded" {
		t.Fatalf("CodeOf = (%q, %v)", code, ok)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(err) {
		t.Fatal("expected unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatal("plain error is not a unique violation")
	}
}
