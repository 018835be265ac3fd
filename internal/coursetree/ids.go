package coursetree

import "github.com/google/uuid"

// IDGenerator produces identifiers for new tree nodes
type IDGenerator interface {
	CourseID() string
	ModuleID() string
	LessonID() string
}

// UUIDGenerator issues random v4 identifiers
type UUIDGenerator struct{}

func (UUIDGenerator) CourseID() string { return uuid.NewString() }
func (UUIDGenerator) ModuleID() string { return "module-" + uuid.NewString() }
func (UUIDGenerator) LessonID() string { return "lesson-" + uuid.NewString() }
