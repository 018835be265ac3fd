package generation

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPrompt       = errors.New("prompt is required")
	ErrGenerationService = errors.New("generation service failed")
	ErrMalformedOutput   = errors.New("generation output is malformed")
)

// ServiceError is a failure to obtain any text from the model: transport errors, non-2xx
// responses, blocked prompts, empty candidates and timeouts.
type ServiceError struct {
	Scope      Scope
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generating %s: status %d: %v", e.Scope, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generating %s: %v", e.Scope, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == ErrGenerationService }

// MalformedOutputError is returned when the model answered but the text is not JSON or
// does not fit the shape that was asked for.
type MalformedOutputError struct {
	Scope Scope
	Err   error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed %s output: %v", e.Scope, e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

func (e *MalformedOutputError) Is(target error) bool { return target == ErrMalformedOutput }
