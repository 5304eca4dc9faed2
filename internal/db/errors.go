package db

import (
	"errors"
	"strings"

	"github.com/forrest-fire-fund/cnx-backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes surfaced to clients as validation failures.
const (
	codeNotNull        = "23502"
	codeCheck          = "23514"
	codeInvalidText    = "22P02"
	codeStringTooLong  = "22001"
	codeNumericOverrun = "22003"
)

// Violations turns a postgres constraint or input error into field details.
// It returns nil when err is not a client-caused database error.
func Violations(err error) []utils.FieldError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch pgErr.Code {
	case codeNotNull:
		return []utils.FieldError{{Field: pgErr.ColumnName, Message: "Path `" + pgErr.ColumnName + "` is required."}}
	case codeCheck:
		return []utils.FieldError{{Field: constraintField(pgErr.ConstraintName), Message: pgErr.Message}}
	case codeInvalidText, codeStringTooLong, codeNumericOverrun:
		field := pgErr.ColumnName
		if field == "" {
			field = "value"
		}
		return []utils.FieldError{{Field: field, Message: pgErr.Message}}
	}
	return nil
}

// constraintField maps chk_<table>_<field> to <field>.
func constraintField(name string) string {
	parts := strings.SplitN(name, "_", 3)
	if len(parts) == 3 && parts[0] == "chk" {
		return parts[2]
	}
	return name
}
