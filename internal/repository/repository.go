package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

func numericFromFloat(v float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(fmt.Sprintf("%f", v)); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("scan numeric: %w", err)
	}
	return n, nil
}
