package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-stock/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"

	codeInvalidTextRepresentation = "22P02"
	classDataException            = "22"
)

// isUUID las columnas id son UUID; cualquier otro texto no puede identificar una fila.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// mapError traduce errores de pgx a errores de dominio, conservando el original con %w.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, err)
		case pgErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
		case pgErr.Code == codeInvalidTextRepresentation:
			// id con sintaxis inválida: ninguna fila puede coincidir
			return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
		case pgErr.Code == codeCheckViolation,
			strings.HasPrefix(pgErr.Code, classDataException):
			// 22003 numeric_value_out_of_range, 22001 string_data_right_truncation...
			return fmt.Errorf("%s: %w: %w", op, domain.ErrInvalidInput, err)
		case pgErr.Code == codeSerializationFailure,
			pgErr.Code == codeDeadlockDetected,
			pgErr.Code == codeLockNotAvailable:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			// connection_exception / admin_shutdown
			return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if pgconn.Timeout(err) || isConnectionError(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapTxError como mapError, pero cualquier fallo no clasificado al abrir o confirmar
// una transacción se considera almacenamiento no disponible.
func mapTxError(op string, err error) error {
	mapped := mapError(op, err)
	if mapped == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return mapped
	}
	for _, known := range []error{domain.ErrConflict, domain.ErrDuplicate, domain.ErrNotFound, domain.ErrInvalidInput, domain.ErrStorageUnavailable} {
		if errors.Is(mapped, known) {
			return mapped
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

// isConnectionError detecta fallos transitorios de red por el mensaje.
func isConnectionError(err error) bool {
	msg := err.Error()
	for _, p := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"i/o timeout",
		"dial tcp",
		"server closed the connection unexpectedly",
		"closed pool",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
