package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// maxQueryParams caps how many ids a single IN (...) list may bind.
// SQLite builds older than 3.32 reject more than 999 host parameters.
const maxQueryParams = 900

// inQuery expands the single "IN (?)" in query for ids and binds args after it.
// Values are always bound, never interpolated.
func inQuery(query string, ids []string, args ...interface{}) (string, []interface{}, error) {
	if len(ids) > maxQueryParams {
		return "", nil, fmt.Errorf("%w: %d ids, limit is %d", ErrTooManyParams, len(ids), maxQueryParams)
	}
	return sqlx.In(query, append([]interface{}{ids}, args...)...)
}
