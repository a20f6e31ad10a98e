package report

import "errors"

var (
	// ErrNoRows is returned by writers that cannot produce output for an
	// empty sweep.
	ErrNoRows = errors.New("report has no rows")

	// ErrUnsupportedFormat is returned for a plot file extension that has no
	// renderer.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)
