// Package schema checks untyped JSON payloads, whether they came from an HTTP client or
// from the generation model, against the course tree shapes and decodes them into model
// values with defaults filled in.
package schema

import (
	"coursegpt/internal/model"
)

var (
	difficultyTag = oneOf(model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAdvanced)
	statusTag     = oneOf(model.StatusDraft, model.StatusPublished)
	lessonTypeTag = oneOf(model.LessonLecture, model.LessonQuiz, model.LessonLab)
)

// Course validates a full course payload. Modules and their lessons are checked with the
// module and lesson rules; ids supplied for children must be unique within their parent.
// A course id in the payload is ignored since course ids are assigned on creation.
func Course(v any) (*model.Course, error) {
	f, err := object(ShapeCourse, "", v)
	if err != nil {
		return nil, err
	}

	title, err := f.requiredString("title")
	if err != nil {
		return nil, err
	}
	category, err := f.requiredString("category")
	if err != nil {
		return nil, err
	}
	difficulty, err := f.enum("difficultyLevel", difficultyTag, true)
	if err != nil {
		return nil, err
	}
	status, err := f.enum("status", statusTag, false)
	if err != nil {
		return nil, err
	}
	description, err := f.optionalString("description")
	if err != nil {
		return nil, err
	}
	thumbnail, err := f.optionalString("thumbnail")
	if err != nil {
		return nil, err
	}

	c := &model.Course{
		Title:           title,
		Category:        category,
		DifficultyLevel: model.DifficultyLevel(*difficulty),
		Description:     deref(description),
		Thumbnail:       deref(thumbnail),
		Status:          model.StatusDraft,
		Modules:         []model.Module{},
	}
	if status != nil {
		c.Status = model.CourseStatus(*status)
	}

	items, _, err := f.array("modules")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		path := index("modules", i)
		m, err := module(ShapeCourse, path, item)
		if err != nil {
			return nil, err
		}
		if err := checkUnique(ShapeCourse, join(path, "id"), m.ID, seen); err != nil {
			return nil, err
		}
		c.Modules = append(c.Modules, *m)
	}
	return c, nil
}

// Module validates a standalone module payload
func Module(v any) (*model.Module, error) {
	return module(ShapeModule, "", v)
}

func module(shape Shape, path string, v any) (*model.Module, error) {
	f, err := object(shape, path, v)
	if err != nil {
		return nil, err
	}

	title, err := f.requiredString("title")
	if err != nil {
		return nil, err
	}
	description, err := f.optionalString("description")
	if err != nil {
		return nil, err
	}
	id, err := f.optionalString("id")
	if err != nil {
		return nil, err
	}

	m := &model.Module{
		ID:          deref(id),
		Title:       title,
		Description: deref(description),
		Lessons:     []model.Lesson{},
	}

	items, _, err := f.array("lessons")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		lpath := index(f.name("lessons"), i)
		l, err := lesson(shape, lpath, item)
		if err != nil {
			return nil, err
		}
		if err := checkUnique(shape, join(lpath, "id"), l.ID, seen); err != nil {
			return nil, err
		}
		m.Lessons = append(m.Lessons, *l)
	}
	return m, nil
}

// Lesson validates a standalone lesson payload
func Lesson(v any) (*model.Lesson, error) {
	return lesson(ShapeLesson, "", v)
}

func lesson(shape Shape, path string, v any) (*model.Lesson, error) {
	f, err := object(shape, path, v)
	if err != nil {
		return nil, err
	}

	title, err := f.requiredString("title")
	if err != nil {
		return nil, err
	}
	typ, err := f.enum("type", lessonTypeTag, true)
	if err != nil {
		return nil, err
	}
	content, err := f.optionalString("content")
	if err != nil {
		return nil, err
	}
	id, err := f.optionalString("id")
	if err != nil {
		return nil, err
	}

	l := &model.Lesson{
		ID:                  deref(id),
		Title:               title,
		Type:                model.LessonType(*typ),
		Content:             deref(content),
		LearningOutcomes:    []string{},
		AdditionalResources: []model.Resource{},
	}

	if outcomes, ok, err := f.array("learningOutcomes"); err != nil {
		return nil, err
	} else if ok {
		if l.LearningOutcomes, err = stringList(shape, f.name("learningOutcomes"), outcomes); err != nil {
			return nil, err
		}
	}
	if resources, ok, err := f.array("additionalResources"); err != nil {
		return nil, err
	} else if ok {
		if l.AdditionalResources, err = resourceList(shape, f.name("additionalResources"), resources); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func resourceList(shape Shape, path string, items []any) ([]model.Resource, error) {
	out := make([]model.Resource, 0, len(items))
	for i, item := range items {
		f, err := object(shape, index(path, i), item)
		if err != nil {
			return nil, err
		}
		title, err := f.requiredString("title")
		if err != nil {
			return nil, err
		}
		url, err := f.requiredString("url")
		if err != nil {
			return nil, err
		}
		typ, err := f.optionalString("type")
		if err != nil {
			return nil, err
		}
		out = append(out, model.Resource{Title: title, URL: url, Type: deref(typ)})
	}
	return out, nil
}

// LessonContent validates the {"content": "..."} shape returned for content generation
func LessonContent(v any) (string, error) {
	f, err := object(ShapeLessonContent, "", v)
	if err != nil {
		return "", err
	}
	return f.requiredString("content")
}

// Outcomes validates a bare array of learning outcome strings
func Outcomes(v any) ([]string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, invalid(ShapeOutcomes, "", "must be an array")
	}
	return stringList(ShapeOutcomes, "", arr)
}

// LessonPatch validates a partial lesson. Every field is optional; those present are type
// checked. A supplied id is ignored.
func LessonPatch(v any) (model.LessonPatch, error) {
	var p model.LessonPatch

	f, err := object(ShapeLessonPatch, "", v)
	if err != nil {
		return p, err
	}
	if p.Title, err = f.nonEmptyString("title"); err != nil {
		return p, err
	}
	typ, err := f.enum("type", lessonTypeTag, false)
	if err != nil {
		return p, err
	}
	if typ != nil {
		t := model.LessonType(*typ)
		p.Type = &t
	}
	if p.Content, err = f.optionalString("content"); err != nil {
		return p, err
	}

	outcomes, ok, err := f.array("learningOutcomes")
	if err != nil {
		return p, err
	}
	if ok {
		if p.LearningOutcomes, err = stringList(ShapeLessonPatch, "learningOutcomes", outcomes); err != nil {
			return p, err
		}
		p.HasLearningOutcomes = true
	}

	resources, ok, err := f.array("additionalResources")
	if err != nil {
		return p, err
	}
	if ok {
		if p.AdditionalResources, err = resourceList(ShapeLessonPatch, "additionalResources", resources); err != nil {
			return p, err
		}
		p.HasAdditionalResources = true
	}
	return p, nil
}

// ModulePatch validates a partial module. The id and lessons keys are ignored; lessons are
// changed through the lesson operations.
func ModulePatch(v any) (model.ModulePatch, error) {
	var p model.ModulePatch

	f, err := object(ShapeModulePatch, "", v)
	if err != nil {
		return p, err
	}
	if p.Title, err = f.nonEmptyString("title"); err != nil {
		return p, err
	}
	if p.Description, err = f.optionalString("description"); err != nil {
		return p, err
	}
	return p, nil
}

func checkUnique(shape Shape, field, id string, seen map[string]struct{}) error {
	if id == "" {
		return nil
	}
	if _, dup := seen[id]; dup {
		return invalid(shape, field, "duplicate id "+id)
	}
	seen[id] = struct{}{}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
