package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidExercice is returned for an exercice outside the supported
// calendar range.
var ErrInvalidExercice = errors.New("invalid exercice")

const (
	minExercice = 1900
	maxExercice = 9999
)

func checkExercice(exercice int) error {
	if exercice < minExercice || exercice > maxExercice {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidExercice, exercice, minExercice, maxExercice)
	}
	return nil
}

func formatValidationErrors(kind string, errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s validation failed (%d errors):", kind, len(errs))
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
