package engine

import "strings"

// InvalidInputError is returned when the validator rejects the plane set.
// It carries the full error list; no partial Measurement is ever produced.
type InvalidInputError struct {
	Errors []string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + strings.Join(e.Errors, "; ")
}

// InvalidMeasurementError is returned when the post-computation consistency
// check fails. It indicates an internal inconsistency rather than bad input;
// the caller can recover, and no Measurement is exposed.
type InvalidMeasurementError struct {
	Problems []string
}

func (e *InvalidMeasurementError) Error() string {
	return "invalid measurement: " + strings.Join(e.Problems, "; ")
}
