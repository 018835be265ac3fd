package operation

import "coursegpt/internal/api/v1/dto"

type GenerateCourseInput struct {
	Body dto.GenerateTextDTO `json:"body"`
}

// GenerateCourseOutput is 201 when the course was saved and 200 when it was only generated
type GenerateCourseOutput struct {
	Status int
	Body   dto.GeneratedCourseResponseDTO `json:"body"`
}

type GenerateModuleInput struct {
	CourseID string              `path:"courseId" doc:"Course ID"`
	Body     dto.GenerateTextDTO `json:"body"`
}

type GenerateModuleOutput struct {
	Body dto.GeneratedModuleResponseDTO `json:"body"`
}

type GenerateLessonInput struct {
	Body dto.GenerateTitleDTO `json:"body"`
}

type GenerateLessonOutput struct {
	Body dto.GeneratedLessonDTO `json:"body"`
}

type GenerateContentInput struct {
	Body dto.GenerateTitleDTO `json:"body"`
}

type GenerateContentOutput struct {
	Body dto.GeneratedContentDTO `json:"body"`
}

type GenerateOutcomesInput struct {
	Body dto.GenerateTitleDTO `json:"body"`
}

type GenerateOutcomesOutput struct {
	Body []string `json:"body"`
}

type RegenerateLessonContentInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
	ModuleID string `path:"moduleId" doc:"Module ID"`
	LessonID string `path:"lessonId" doc:"Lesson ID"`
	Version  int64  `query:"version" minimum:"0" doc:"Expected course version, 0 skips the check"`
}

type RegenerateLessonContentOutput struct {
	Body dto.RegeneratedContentResponseDTO `json:"body"`
}
