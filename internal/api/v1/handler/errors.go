package handler

import (
	"errors"

	"coursegpt/internal/coursetree"
	"coursegpt/internal/generation"
	"coursegpt/internal/repository"
	"coursegpt/internal/schema"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

// toHTTPError maps service errors onto status codes. MalformedOutputError is checked before
// validation because generated output that fails validation wraps a ValidationError.
func toHTTPError(logger zerolog.Logger, err error, failure string) error {
	var validationErr *schema.ValidationError
	switch {
	case errors.Is(err, generation.ErrMalformedOutput):
		return huma.Error502BadGateway("Generation service returned malformed output", err)
	case errors.As(err, &validationErr):
		location := "body"
		if validationErr.Field != "" {
			location += "." + validationErr.Field
		}
		return huma.Error400BadRequest(validationErr.Error(), &huma.ErrorDetail{
			Message:  validationErr.Reason,
			Location: location,
		})
	case errors.Is(err, generation.ErrEmptyPrompt):
		return huma.Error400BadRequest("Prompt is required", err)
	case errors.Is(err, repository.ErrCourseNotFound):
		return huma.Error404NotFound("Course not found")
	case errors.Is(err, coursetree.ErrModuleNotFound):
		return huma.Error404NotFound("Module not found")
	case errors.Is(err, coursetree.ErrLessonNotFound):
		return huma.Error404NotFound("Lesson not found")
	case errors.Is(err, repository.ErrVersionConflict):
		return huma.Error409Conflict("Course was modified by another request, reload and retry", err)
	case errors.Is(err, generation.ErrGenerationService):
		logger.Error().Err(err).Msg(failure)
		return huma.Error503ServiceUnavailable("Generation service is unavailable", err)
	default:
		logger.Error().Err(err).Msg(failure)
		return huma.Error500InternalServerError(failure, err)
	}
}
