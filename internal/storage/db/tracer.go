package db

import (
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
)

// newTracer builds the query tracer attached to every pooled connection.
func newTracer() pgx.QueryTracer {
	return otelpgx.NewTracer(otelpgx.WithTrimSQLInSpanName())
}
