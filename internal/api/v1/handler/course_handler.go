package handler

import (
	"context"
	"fmt"

	"coursegpt/internal/api/v1/dto"
	"coursegpt/internal/api/v1/operation"
	"coursegpt/internal/model"
	"coursegpt/internal/service"

	"github.com/rs/zerolog"
)

// CourseHandler implements Huma-based course, module and lesson operations
type CourseHandler struct {
	courseService service.CourseService
	logger        zerolog.Logger
}

func NewCourseHandler(courseService service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		logger:        logger,
	}
}

func courseResponse(message string, c *model.Course) *operation.CourseOutput {
	return &operation.CourseOutput{
		Body: dto.CourseResponseDTO{Message: message, Course: toCourseDTO(c)},
	}
}

// CreateCourse validates the payload and stores a new draft course
func (h *CourseHandler) CreateCourse(ctx context.Context, input *operation.CreateCourseInput) (*operation.CreateCourseOutput, error) {
	c, err := h.courseService.CreateCourse(ctx, input.Body)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to create course")
	}
	return &operation.CreateCourseOutput{
		Body: dto.CourseResponseDTO{Message: "Course created successfully", Course: toCourseDTO(c)},
	}, nil
}

func (h *CourseHandler) ListCourses(ctx context.Context, input *operation.ListCoursesInput) (*operation.ListCoursesOutput, error) {
	summaries, err := h.courseService.ListCourses(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to list courses")
	}
	out := make([]dto.CourseSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toCourseSummaryDTO(s))
	}
	return &operation.ListCoursesOutput{Body: out}, nil
}

func (h *CourseHandler) GetCourse(ctx context.Context, input *operation.GetCourseInput) (*operation.GetCourseOutput, error) {
	c, err := h.courseService.GetCourse(ctx, input.CourseID)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to get course")
	}
	return &operation.GetCourseOutput{Body: toCourseDTO(c)}, nil
}

// TogglePublish flips the course between Draft and Published
func (h *CourseHandler) TogglePublish(ctx context.Context, input *operation.TogglePublishInput) (*operation.CourseOutput, error) {
	c, err := h.courseService.TogglePublish(ctx, input.CourseID, input.Version)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to toggle course status")
	}
	return courseResponse(fmt.Sprintf("Course status updated to %s", c.Status), c), nil
}

func (h *CourseHandler) AddModule(ctx context.Context, input *operation.AddModuleInput) (*operation.AddModuleOutput, error) {
	c, m, err := h.courseService.AddModule(ctx, input.CourseID, input.Body, input.Version)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to add module")
	}
	return &operation.AddModuleOutput{
		Body: dto.ModuleResponseDTO{
			Message: "Module added successfully",
			Module:  toModuleDTO(m),
			Course:  toCourseDTO(c),
		},
	}, nil
}

func (h *CourseHandler) UpdateModule(ctx context.Context, input *operation.UpdateModuleInput) (*operation.CourseOutput, error) {
	c, err := h.courseService.UpdateModule(ctx, input.CourseID, input.ModuleID, input.Body, input.Version)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to update module")
	}
	return courseResponse("Module updated successfully", c), nil
}

func (h *CourseHandler) DeleteModule(ctx context.Context, input *operation.DeleteModuleInput) (*operation.CourseOutput, error) {
	c, err := h.courseService.DeleteModule(ctx, input.CourseID, input.ModuleID, input.Version)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to delete module")
	}
	return courseResponse("Module deleted successfully", c), nil
}

func (h *CourseHandler) AddLesson(ctx context.Context, input *operation.AddLessonInput) (*operation.AddLessonOutput, error) {
	c, l, err := h.courseService.AddLesson(ctx, input.CourseID, input.ModuleID, input.Body, input.Version)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to add lesson")
	}
	return &operation.AddLessonOutput{
		Body: dto.LessonResponseDTO{
			Message: "Lesson added successfully",
			Lesson:  toLessonDTO(l),
			Course:  toCourseDTO(c),
		},
	}, nil
}

// UpdateLesson merges the supplied fields into the lesson. The lesson id cannot change.
func (h *CourseHandler) UpdateLesson(ctx context.Context, input *operation.UpdateLessonInput) (*operation.CourseOutput, error) {
	c, err := h.courseService.UpdateLesson(ctx, input.CourseID, input.ModuleID, input.LessonID, input.Body, input.Version)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to update lesson")
	}
	return courseResponse("Lesson updated successfully", c), nil
}

func (h *CourseHandler) DeleteLesson(ctx context.Context, input *operation.DeleteLessonInput) (*operation.CourseOutput, error) {
	c, err := h.courseService.DeleteLesson(ctx, input.CourseID, input.ModuleID, input.LessonID, input.Version)
	if err != nil {
		return nil, toHTTPError(h.logger, err, "Failed to delete lesson")
	}
	return courseResponse("Lesson deleted successfully", c), nil
}
