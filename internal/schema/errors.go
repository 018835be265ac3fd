package schema

import (
	"errors"
	"fmt"
)

// Shape names the structure a payload is validated against
type Shape string

const (
	ShapeCourse        Shape = "course"
	ShapeModule        Shape = "module"
	ShapeLesson        Shape = "lesson"
	ShapeLessonContent Shape = "lesson content"
	ShapeOutcomes      Shape = "learning outcomes"
	ShapeLessonPatch   Shape = "lesson update"
	ShapeModulePatch   Shape = "module update"
)

// ErrValidation is matched by every *ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError reports the first field of a payload that does not fit its shape.
type ValidationError struct {
	Shape  Shape
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Shape, e.Reason)
	}
	return fmt.Sprintf("invalid %s: field %q %s", e.Shape, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(shape Shape, field, reason string) *ValidationError {
	return &ValidationError{Shape: shape, Field: field, Reason: reason}
}
