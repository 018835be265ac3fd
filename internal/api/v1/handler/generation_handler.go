package handler

import (
	"context"
	"net/http"

	"coursegpt/internal/api/v1/dto"
	"coursegpt/internal/api/v1/operation"
	"coursegpt/internal/service"

	"github.com/rs/zerolog"
)

// GenerationHandler implements the Huma operations backed by the language model
type GenerationHandler struct {
	generationService service.GenerationService
	logger            zerolog.Logger
}

func NewGenerationHandler(generationService service.GenerationService, logger zerolog.Logger) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		logger:            logger,
	}
}

// GenerateCourse returns the generated course even when saving it failed
func (h *GenerationHandler) GenerateCourse(ctx context.Context, input *operation.GenerateCourseInput) (*operation.GenerateCourseOutput, error) {
	res, err := h.generationService.GenerateCourse(ctx, input.Body.Text)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to generate course")
	}
	if !res.Persisted {
		return &operation.GenerateCourseOutput{
			Status: http.StatusOK,
			Body: dto.GeneratedCourseResponseDTO{
				Message: "Course generated but not saved to database",
				Course:  toCourseDTO(res.Course),
				Error:   res.PersistErr.Error(),
			},
		}, nil
	}
	return &operation.GenerateCourseOutput{
		Status: http.StatusCreated,
		Body: dto.GeneratedCourseResponseDTO{
			Message:   "Course generated and saved successfully",
			Course:    toCourseDTO(res.Course),
			Persisted: true,
		},
	}, nil
}

func (h *GenerationHandler) GenerateModule(ctx context.Context, input *operation.GenerateModuleInput) (*operation.GenerateModuleOutput, error) {
	res, err := h.generationService.GenerateModule(ctx, input.CourseID, input.Body.Text)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to generate module")
	}
	if !res.Persisted {
		return &operation.GenerateModuleOutput{
			Body: dto.GeneratedModuleResponseDTO{
				Message: "Module generated but not saved to database",
				Module:  toModuleDTO(res.Module),
				Error:   res.PersistErr.Error(),
			},
		}, nil
	}
	course := toCourseDTO(res.Course)
	return &operation.GenerateModuleOutput{
		Body: dto.GeneratedModuleResponseDTO{
			Message:   "Module generated and added successfully",
			Module:    toModuleDTO(res.Module),
			Course:    &course,
			Persisted: true,
		},
	}, nil
}

// GenerateLesson returns a lesson for the client to review; it is not inserted anywhere
func (h *GenerationHandler) GenerateLesson(ctx context.Context, input *operation.GenerateLessonInput) (*operation.GenerateLessonOutput, error) {
	l, err := h.generationService.GenerateLesson(ctx, input.Body.Title)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to generate lesson")
	}
	lesson := toLessonDTO(l)
	return &operation.GenerateLessonOutput{
		Body: dto.GeneratedLessonDTO{
			Title:               lesson.Title,
			Type:                lesson.Type,
			Content:             lesson.Content,
			LearningOutcomes:    lesson.LearningOutcomes,
			AdditionalResources: lesson.AdditionalResources,
		},
	}, nil
}

func (h *GenerationHandler) GenerateContent(ctx context.Context, input *operation.GenerateContentInput) (*operation.GenerateContentOutput, error) {
	content, err := h.generationService.GenerateLessonContent(ctx, input.Body.Title)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to generate lesson content")
	}
	return &operation.GenerateContentOutput{Body: dto.GeneratedContentDTO{Content: content}}, nil
}

func (h *GenerationHandler) GenerateOutcomes(ctx context.Context, input *operation.GenerateOutcomesInput) (*operation.GenerateOutcomesOutput, error) {
	outcomes, err := h.generationService.GenerateOutcomes(ctx, input.Body.Title)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to generate learning outcomes")
	}
	return &operation.GenerateOutcomesOutput{Body: outcomes}, nil
}

func (h *GenerationHandler) RegenerateLessonContent(ctx context.Context, input *operation.RegenerateLessonContentInput) (*operation.RegenerateLessonContentOutput, error) {
	res, err := h.generationService.RegenerateLessonContent(ctx, input.CourseID, input.ModuleID, input.LessonID, input.Version)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to regenerate lesson content")
	}
	if !res.Persisted {
		return &operation.RegenerateLessonContentOutput{
			Body: dto.RegeneratedContentResponseDTO{
				Message: "Content generated but not saved to database",
				Content: res.Content,
				Error:   res.PersistErr.Error(),
			},
		}, nil
	}
	course := toCourseDTO(res.Course)
	return &operation.RegenerateLessonContentOutput{
		Body: dto.RegeneratedContentResponseDTO{
			Message:   "Lesson content regenerated successfully",
			Content:   res.Content,
			Course:    &course,
			Persisted: true,
		},
	}, nil
}
