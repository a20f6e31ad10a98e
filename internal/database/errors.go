package database

import "errors"

var (
	// ErrRunNotFound is returned when no stored run matches an ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousID is returned when an ID prefix matches more than one run.
	ErrAmbiguousID = errors.New("run id prefix is ambiguous")

	// ErrNilReport is returned when SaveRun is given a nil report.
	ErrNilReport = errors.New("report is nil")
)
