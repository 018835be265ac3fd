package operation

import "coursegpt/internal/api/v1/dto"

// Course payloads stay untyped JSON so that the course schema validator reports field
// paths and closed-set violations in one place.

type CreateCourseInput struct {
	Body map[string]any `json:"body" doc:"Course with optional modules and lessons"`
}

type CreateCourseOutput struct {
	Body dto.CourseResponseDTO `json:"body"`
}

type ListCoursesInput struct{}

type ListCoursesOutput struct {
	Body []dto.CourseSummaryDTO `json:"body"`
}

type GetCourseInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
}

type GetCourseOutput struct {
	Body dto.CourseDTO `json:"body"`
}

type TogglePublishInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
	Version  int64  `query:"version" minimum:"0" doc:"Expected course version, 0 skips the check"`
}

type CourseOutput struct {
	Body dto.CourseResponseDTO `json:"body"`
}

// Module operations

type AddModuleInput struct {
	CourseID string         `path:"courseId" doc:"Course ID"`
	Version  int64          `query:"version" minimum:"0" doc:"Expected course version, 0 skips the check"`
	Body     map[string]any `json:"body" doc:"Module with optional lessons"`
}

type AddModuleOutput struct {
	Body dto.ModuleResponseDTO `json:"body"`
}

type UpdateModuleInput struct {
	CourseID string         `path:"courseId" doc:"Course ID"`
	ModuleID string         `path:"moduleId" doc:"Module ID"`
	Version  int64          `query:"version" minimum:"0" doc:"Expected course version, 0 skips the check"`
	Body     map[string]any `json:"body" doc:"Module fields to change"`
}

type DeleteModuleInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
	ModuleID string `path:"moduleId" doc:"Module ID"`
	Version  int64  `query:"version" minimum:"0" doc:"Expected course version, 0 skips the check"`
}

// Lesson operations

type AddLessonInput struct {
	CourseID string         `path:"courseId" doc:"Course ID"`
	ModuleID string         `path:"moduleId" doc:"Module ID"`
	Version  int64          `query:"version" minimum:"0" doc:"Expected course version, 0 skips the check"`
	Body     map[string]any `json:"body" doc:"Lesson to append"`
}

type AddLessonOutput struct {
	Body dto.LessonResponseDTO `json:"body"`
}

type UpdateLessonInput struct {
	CourseID string         `path:"courseId" doc:"Course ID"`
	ModuleID string         `path:"moduleId" doc:"Module ID"`
	LessonID string         `path:"lessonId" doc:"Lesson ID"`
	Version  int64          `query:"version" minimum:"0" doc:"Expected course version, 0 skips the check"`
	Body     map[string]any `json:"body" doc:"Lesson fields to change"`
}

type DeleteLessonInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
	ModuleID string `path:"moduleId" doc:"Module ID"`
	LessonID string `path:"lessonId" doc:"Lesson ID"`
	Version  int64  `query:"version" minimum:"0" doc:"Expected course version, 0 skips the check"`
}
