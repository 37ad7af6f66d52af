package errors

import "errors"

// ErrNoRowsAffected is returned by conditional updates whose guard did not
// match: the row exists but is not in the expected state.
var ErrNoRowsAffected = errors.New("conditional update matched no rows")
