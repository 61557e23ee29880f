package infrastructure

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"

	"pricetrack/internal/shared/domain"
)

// Code SQLSTATE PostgreSQL d'une violation de clé étrangère
const pqForeignKeyViolation = "23503"

// ClassifyError convertit une erreur du store en erreur structurée du domaine
// Les erreurs déjà classées sont retournées telles quelles
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	if isTransient(err) {
		return domain.NewError(domain.KindTransientStore, op, err.Error(), err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		msg := pqErr.Message
		if pqErr.Detail != "" {
			msg += ": " + pqErr.Detail
		}
		return domain.NewError(domain.KindConstraintViolation, op, msg, err)
	}

	return err
}

// IsForeignKeyViolation vérifie si err est une violation de clé étrangère
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, pqForeignKeyViolation)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08": // connection_exception
			return true
		case pqErr.Code == "40001", pqErr.Code == "40P01": // serialization_failure, deadlock_detected
			return true
		case pqErr.Code == "53300": // too_many_connections
			return true
		case strings.HasPrefix(string(pqErr.Code), "57P"): // admin/crash shutdown
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
