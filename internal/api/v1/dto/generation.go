package dto

type GenerateTextDTO struct {
	Text string `json:"text" doc:"Topic or prompt for the model"`
}

type GenerateTitleDTO struct {
	Title string `json:"title" doc:"Lesson title to generate for"`
}

// GeneratedCourseResponseDTO carries the generated course even when it could not be saved.
// Error is set only in that case.
type GeneratedCourseResponseDTO struct {
	Message   string    `json:"message"`
	Course    CourseDTO `json:"course"`
	Persisted bool      `json:"persisted"`
	Error     string    `json:"error,omitempty"`
}

type GeneratedModuleResponseDTO struct {
	Message   string     `json:"message"`
	Module    ModuleDTO  `json:"module"`
	Course    *CourseDTO `json:"course,omitempty"`
	Persisted bool       `json:"persisted"`
	Error     string     `json:"error,omitempty"`
}

type GeneratedLessonDTO struct {
	Title               string        `json:"title"`
	Type                string        `json:"type"`
	Content             string        `json:"content"`
	LearningOutcomes    []string      `json:"learningOutcomes"`
	AdditionalResources []ResourceDTO `json:"additionalResources"`
}

type GeneratedContentDTO struct {
	Content string `json:"content"`
}

type RegeneratedContentResponseDTO struct {
	Message   string     `json:"message"`
	Content   string     `json:"content"`
	Course    *CourseDTO `json:"course,omitempty"`
	Persisted bool       `json:"persisted"`
	Error     string     `json:"error,omitempty"`
}
