package infrastructure

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"pricetrack/internal/shared/domain"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"foreign key", &pq.Error{Code: "23503", Message: "fk"}, domain.KindConstraintViolation},
		{"unique", &pq.Error{Code: "23505", Message: "dup"}, domain.KindConstraintViolation},
		{"connection", &pq.Error{Code: "08006", Message: "conn"}, domain.KindTransientStore},
		{"serialization", &pq.Error{Code: "40001", Message: "retry"}, domain.KindTransientStore},
		{"shutdown", &pq.Error{Code: "57P01", Message: "admin shutdown"}, domain.KindTransientStore},
		{"deadline", context.DeadlineExceeded, domain.KindTransientStore},
		{"bad conn", fmt.Errorf("query: %w", driver.ErrBadConn), domain.KindTransientStore},
		{"syntax", &pq.Error{Code: "42601", Message: "syntax"}, ""},
		{"plain", errors.New("plain"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.KindOf(ClassifyError("op", tc.err))
			if got != tc.want {
				t.Fatalf("ClassifyError(%v) kind = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassifyError_KeepsDomainErrors(t *testing.T) {
	in := domain.InvalidReference("op", "missing")
	if out := ClassifyError("other", in); out != error(in) {
		t.Fatalf("domain errors must pass through unchanged, got %v", out)
	}
	if ClassifyError("op", nil) != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23503"})) {
		t.Error("wrapped 23503 must be a foreign key violation")
	}
	if IsForeignKeyViolation(&pq.Error{Code: "23505"}) {
		t.Error("23505 is a unique violation, not a foreign key violation")
	}
	if IsForeignKeyViolation(errors.New("x")) {
		t.Error("plain error is not a foreign key violation")
	}
}
