package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainerrors "github.com/rafabene/avantpro-members/internal/domain/errors"
)

// SQLSTATE do PostgreSQL
const (
	pgUndefinedTable   = "42P01"
	pgUniqueViolation  = "23505"
	sqliteMissingTable = "no such table"
	sqliteUnique       = "UNIQUE constraint failed"
)

// translateError converte erros do driver em erros de domínio.
// Tabela ausente vira ErrStorageUnavailable; chave duplicada vira gorm.ErrDuplicatedKey.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if isMissingTable(err) {
		return fmt.Errorf("%w: %v", domainerrors.ErrStorageUnavailable, err)
	}

	if isDuplicateKey(err) && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}

	return err
}

func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	return strings.Contains(err.Error(), sqliteMissingTable)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), sqliteUnique)
}
