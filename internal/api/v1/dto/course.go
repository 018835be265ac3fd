package dto

import "time"

type ResourceDTO struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type,omitempty"`
}

type LessonDTO struct {
	ID                  string        `json:"id"`
	Title               string        `json:"title"`
	Type                string        `json:"type" enum:"lecture,quiz,lab"`
	Content             string        `json:"content"`
	LearningOutcomes    []string      `json:"learningOutcomes"`
	AdditionalResources []ResourceDTO `json:"additionalResources"`
}

type ModuleDTO struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Lessons     []LessonDTO `json:"lessons"`
}

type CourseDTO struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	DifficultyLevel string      `json:"difficultyLevel" enum:"Beginner,Intermediate,Advanced"`
	Thumbnail       string      `json:"thumbnail"`
	Status          string      `json:"status" enum:"Draft,Published"`
	Modules         []ModuleDTO `json:"modules"`
	Version         int64       `json:"version" doc:"Pass as ?version= on the next mutation to detect concurrent edits"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type CourseSummaryDTO struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	DifficultyLevel string    `json:"difficultyLevel"`
	Thumbnail       string    `json:"thumbnail"`
	Status          string    `json:"status"`
	ModuleCount     int       `json:"moduleCount"`
	LessonCount     int       `json:"lessonCount"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CourseResponseDTO is returned by every course mutation
type CourseResponseDTO struct {
	Message string    `json:"message"`
	Course  CourseDTO `json:"course"`
}

type ModuleResponseDTO struct {
	Message string    `json:"message"`
	Module  ModuleDTO `json:"module"`
	Course  CourseDTO `json:"course"`
}

type LessonResponseDTO struct {
	Message string    `json:"message"`
	Lesson  LessonDTO `json:"lesson"`
	Course  CourseDTO `json:"course"`
}
