package pipeline

import "errors"

// ErrNoRows is returned by steps that need sweep rows when the report has none.
var ErrNoRows = errors.New("report has no rows")
