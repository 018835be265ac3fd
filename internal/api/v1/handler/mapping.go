package handler

import (
	"coursegpt/internal/api/v1/dto"
	"coursegpt/internal/model"
)

func toResourceDTOs(resources []model.Resource) []dto.ResourceDTO {
	out := make([]dto.ResourceDTO, 0, len(resources))
	for _, r := range resources {
		out = append(out, dto.ResourceDTO{Title: r.Title, URL: r.URL, Type: r.Type})
	}
	return out
}

func toLessonDTO(l *model.Lesson) dto.LessonDTO {
	outcomes := l.LearningOutcomes
	if outcomes == nil {
		outcomes = []string{}
	}
	return dto.LessonDTO{
		ID:                  l.ID,
		Title:               l.Title,
		Type:                string(l.Type),
		Content:             l.Content,
		LearningOutcomes:    outcomes,
		AdditionalResources: toResourceDTOs(l.AdditionalResources),
	}
}

func toModuleDTO(m *model.Module) dto.ModuleDTO {
	lessons := make([]dto.LessonDTO, 0, len(m.Lessons))
	for i := range m.Lessons {
		lessons = append(lessons, toLessonDTO(&m.Lessons[i]))
	}
	return dto.ModuleDTO{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Lessons:     lessons,
	}
}

func toCourseDTO(c *model.Course) dto.CourseDTO {
	modules := make([]dto.ModuleDTO, 0, len(c.Modules))
	for i := range c.Modules {
		modules = append(modules, toModuleDTO(&c.Modules[i]))
	}
	return dto.CourseDTO{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Category:        c.Category,
		DifficultyLevel: string(c.DifficultyLevel),
		Thumbnail:       c.Thumbnail,
		Status:          string(c.Status),
		Modules:         modules,
		Version:         c.Version,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toCourseSummaryDTO(s model.CourseSummary) dto.CourseSummaryDTO {
	return dto.CourseSummaryDTO{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		Category:        s.Category,
		DifficultyLevel: string(s.DifficultyLevel),
		Thumbnail:       s.Thumbnail,
		Status:          string(s.Status),
		ModuleCount:     s.ModuleCount,
		LessonCount:     s.LessonCount,
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
