package model

import "time"

// DifficultyLevel is the closed set of course difficulty levels
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "Beginner"
	DifficultyIntermediate DifficultyLevel = "Intermediate"
	DifficultyAdvanced     DifficultyLevel = "Advanced"
)

func (d DifficultyLevel) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// CourseStatus is the publication state of a course
type CourseStatus string

const (
	StatusDraft     CourseStatus = "Draft"
	StatusPublished CourseStatus = "Published"
)

func (s CourseStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Toggled returns the opposite status. Anything that is not Published flips to Published.
func (s CourseStatus) Toggled() CourseStatus {
	if s == StatusPublished {
		return StatusDraft
	}
	return StatusPublished
}

// LessonType is the closed set of lesson kinds
type LessonType string

const (
	LessonLecture LessonType = "lecture"
	LessonQuiz    LessonType = "quiz"
	LessonLab     LessonType = "lab"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonLecture, LessonQuiz, LessonLab:
		return true
	}
	return false
}

// Course is the aggregate root. Modules and lessons are embedded and persisted with it
// as a single document.
type Course struct {
	ID              string          `json:"id" bson:"_id"`
	Title           string          `json:"title" bson:"title"`
	Description     string          `json:"description" bson:"description"`
	Category        string          `json:"category" bson:"category"`
	DifficultyLevel DifficultyLevel `json:"difficultyLevel" bson:"difficultyLevel"`
	Thumbnail       string          `json:"thumbnail" bson:"thumbnail"`
	Status          CourseStatus    `json:"status" bson:"status"`
	Modules         []Module        `json:"modules" bson:"modules"`
	Version         int64           `json:"version" bson:"version"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// Module is an ordered group of lessons inside a course
type Module struct {
	ID          string   `json:"id" bson:"id"`
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description" bson:"description"`
	Lessons     []Lesson `json:"lessons" bson:"lessons"`
}

// Lesson is a single unit of content inside a module
type Lesson struct {
	ID                  string     `json:"id" bson:"id"`
	Title               string     `json:"title" bson:"title"`
	Type                LessonType `json:"type" bson:"type"`
	Content             string     `json:"content,omitempty" bson:"content,omitempty"`
	LearningOutcomes    []string   `json:"learningOutcomes" bson:"learningOutcomes"`
	AdditionalResources []Resource `json:"additionalResources" bson:"additionalResources"`
}

// Resource is an external reference attached to a lesson
type Resource struct {
	Title string `json:"title" bson:"title"`
	URL   string `json:"url" bson:"url"`
	Type  string `json:"type,omitempty" bson:"type,omitempty"`
}

// LessonPatch carries the mergeable lesson fields. A nil field is left untouched.
// It has no ID field, so a patch can never retarget a lesson.
type LessonPatch struct {
	Title               *string
	Type                *LessonType
	Content             *string
	LearningOutcomes    []string
	AdditionalResources []Resource

	// set when the corresponding slice field was present in the payload, so that an
	// explicit empty list clears the existing one
	HasLearningOutcomes    bool
	HasAdditionalResources bool
}

// IsEmpty reports whether the patch would not change anything
func (p LessonPatch) IsEmpty() bool {
	return p.Title == nil && p.Type == nil && p.Content == nil &&
		!p.HasLearningOutcomes && !p.HasAdditionalResources
}

// ModulePatch carries the mergeable module fields
type ModulePatch struct {
	Title       *string
	Description *string
}

func (p ModulePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil
}

// CourseSummary is the listing view of a course
type CourseSummary struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	DifficultyLevel DifficultyLevel `json:"difficultyLevel"`
	Thumbnail       string          `json:"thumbnail"`
	Status          CourseStatus    `json:"status"`
	ModuleCount     int             `json:"moduleCount"`
	LessonCount     int             `json:"lessonCount"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Summary builds the listing view of the course
func (c *Course) Summary() CourseSummary {
	lessons := 0
	for _, m := range c.Modules {
		lessons += len(m.Lessons)
	}
	return CourseSummary{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Category:        c.Category,
		DifficultyLevel: c.DifficultyLevel,
		Thumbnail:       c.Thumbnail,
		Status:          c.Status,
		ModuleCount:     len(c.Modules),
		LessonCount:     lessons,
		Version:         c.Version,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// Clone returns a deep copy of the course tree
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	out := *c
	out.Modules = make([]Module, len(c.Modules))
	for i, m := range c.Modules {
		out.Modules[i] = m.Clone()
	}
	return &out
}

// Clone returns a deep copy of the module
func (m Module) Clone() Module {
	out := m
	out.Lessons = make([]Lesson, len(m.Lessons))
	for i, l := range m.Lessons {
		out.Lessons[i] = l.Clone()
	}
	return out
}

// Clone returns a deep copy of the lesson
func (l Lesson) Clone() Lesson {
	out := l
	out.LearningOutcomes = append([]string{}, l.LearningOutcomes...)
	out.AdditionalResources = append([]Resource{}, l.AdditionalResources...)
	return out
}
