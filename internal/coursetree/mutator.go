// Package coursetree applies add, update, delete and toggle operations to a course tree.
// Every operation works on a copy and returns the new tree; on error the input is left as
// it was.
package coursetree

import (
	"errors"
	"fmt"
	"time"

	"coursegpt/internal/model"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrModuleNotFound = fmt.Errorf("module %w", ErrNotFound)
	ErrLessonNotFound = fmt.Errorf("lesson %w", ErrNotFound)
)

// maxDraws bounds the collision redraw loop against a broken generator
const maxDraws = 8

type Mutator struct {
	ids IDGenerator
	now func() time.Time
}

func NewMutator(ids IDGenerator, now func() time.Time) *Mutator {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if now == nil {
		now = time.Now
	}
	return &Mutator{ids: ids, now: now}
}

// NewCourse prepares a validated draft for its first save: it assigns the course id and
// any missing module and lesson ids, fills defaults and stamps both timestamps. Stored
// versions start at 1 so that 0 can stand for "any version".
func (m *Mutator) NewCourse(draft *model.Course) *model.Course {
	c := draft.Clone()
	c.ID = m.ids.CourseID()
	if c.Status == "" {
		c.Status = model.StatusDraft
	}
	if c.Modules == nil {
		c.Modules = []model.Module{}
	}

	moduleIDs := make(map[string]struct{}, len(c.Modules))
	for i := range c.Modules {
		if c.Modules[i].ID != "" {
			moduleIDs[c.Modules[i].ID] = struct{}{}
		}
	}
	for i := range c.Modules {
		mod := &c.Modules[i]
		if mod.ID == "" {
			mod.ID = m.draw(m.ids.ModuleID, moduleIDs)
		}
		m.fillLessonIDs(mod)
	}

	// stores keep milliseconds
	now := m.now().UTC().Truncate(time.Millisecond)
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Version = 1
	return c
}

// AddModule appends a module under a freshly issued id. Lessons carried by the module keep
// their ids, missing ones are assigned.
func (m *Mutator) AddModule(c *model.Course, mod *model.Module) (*model.Course, *model.Module) {
	out := c.Clone()
	added := mod.Clone()
	added.ID = m.draw(m.ids.ModuleID, moduleIDSet(out))
	if added.Lessons == nil {
		added.Lessons = []model.Lesson{}
	}
	m.fillLessonIDs(&added)
	out.Modules = append(out.Modules, added)
	return out, &out.Modules[len(out.Modules)-1]
}

func (m *Mutator) UpdateModule(c *model.Course, moduleID string, patch model.ModulePatch) (*model.Course, error) {
	out := c.Clone()
	mod, err := FindModule(out, moduleID)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		mod.Title = *patch.Title
	}
	if patch.Description != nil {
		mod.Description = *patch.Description
	}
	return out, nil
}

func (m *Mutator) DeleteModule(c *model.Course, moduleID string) (*model.Course, error) {
	i := moduleIndex(c, moduleID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, moduleID)
	}
	out := c.Clone()
	out.Modules = append(out.Modules[:i], out.Modules[i+1:]...)
	return out, nil
}

func (m *Mutator) AddLesson(c *model.Course, moduleID string, l *model.Lesson) (*model.Course, *model.Lesson, error) {
	out := c.Clone()
	mod, err := FindModule(out, moduleID)
	if err != nil {
		return nil, nil, err
	}
	added := l.Clone()
	added.ID = m.draw(m.ids.LessonID, lessonIDSet(mod))
	mod.Lessons = append(mod.Lessons, added)
	return out, &mod.Lessons[len(mod.Lessons)-1], nil
}

// UpdateLesson merges the patch into the lesson. The lesson keeps its id whatever the
// patch carries.
func (m *Mutator) UpdateLesson(c *model.Course, moduleID, lessonID string, patch model.LessonPatch) (*model.Course, error) {
	out := c.Clone()
	l, err := FindLesson(out, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Type != nil {
		l.Type = *patch.Type
	}
	if patch.Content != nil {
		l.Content = *patch.Content
	}
	if patch.HasLearningOutcomes {
		l.LearningOutcomes = append([]string{}, patch.LearningOutcomes...)
	}
	if patch.HasAdditionalResources {
		l.AdditionalResources = append([]model.Resource{}, patch.AdditionalResources...)
	}
	l.ID = lessonID
	return out, nil
}

func (m *Mutator) DeleteLesson(c *model.Course, moduleID, lessonID string) (*model.Course, error) {
	out := c.Clone()
	mod, err := FindModule(out, moduleID)
	if err != nil {
		return nil, err
	}
	i := lessonIndex(mod, lessonID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrLessonNotFound, lessonID)
	}
	mod.Lessons = append(mod.Lessons[:i], mod.Lessons[i+1:]...)
	return out, nil
}

func (m *Mutator) TogglePublish(c *model.Course) *model.Course {
	out := c.Clone()
	out.Status = out.Status.Toggled()
	return out
}

// FindModule returns a pointer into c, so callers holding a clone may edit it in place
func FindModule(c *model.Course, moduleID string) (*model.Module, error) {
	i := moduleIndex(c, moduleID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, moduleID)
	}
	return &c.Modules[i], nil
}

func FindLesson(c *model.Course, moduleID, lessonID string) (*model.Lesson, error) {
	mod, err := FindModule(c, moduleID)
	if err != nil {
		return nil, err
	}
	i := lessonIndex(mod, lessonID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrLessonNotFound, lessonID)
	}
	return &mod.Lessons[i], nil
}

func moduleIndex(c *model.Course, moduleID string) int {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return i
		}
	}
	return -1
}

func lessonIndex(mod *model.Module, lessonID string) int {
	for i := range mod.Lessons {
		if mod.Lessons[i].ID == lessonID {
			return i
		}
	}
	return -1
}

func moduleIDSet(c *model.Course) map[string]struct{} {
	set := make(map[string]struct{}, len(c.Modules))
	for _, mod := range c.Modules {
		set[mod.ID] = struct{}{}
	}
	return set
}

func lessonIDSet(mod *model.Module) map[string]struct{} {
	set := make(map[string]struct{}, len(mod.Lessons))
	for _, l := range mod.Lessons {
		set[l.ID] = struct{}{}
	}
	return set
}

func (m *Mutator) fillLessonIDs(mod *model.Module) {
	taken := make(map[string]struct{}, len(mod.Lessons))
	for _, l := range mod.Lessons {
		if l.ID != "" {
			taken[l.ID] = struct{}{}
		}
	}
	for i := range mod.Lessons {
		if mod.Lessons[i].ID == "" {
			mod.Lessons[i].ID = m.draw(m.ids.LessonID, taken)
		}
	}
}

// draw issues an id not yet in taken and records it there
func (m *Mutator) draw(next func() string, taken map[string]struct{}) string {
	id := next()
	for n := 1; n < maxDraws; n++ {
		if _, dup := taken[id]; !dup {
			break
		}
		id = next()
	}
	if _, dup := taken[id]; dup {
		panic(fmt.Sprintf("coursetree: id generator keeps returning taken id %q", id))
	}
	taken[id] = struct{}{}
	return id
}
