package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursegpt/internal/model"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrVersionConflict = errors.New("course was modified concurrently")
	ErrPersistence     = errors.New("persistence failed")
)

// PersistenceError wraps a backend failure with the operation that hit it
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s course: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func errDuplicateID(id string) error {
	return fmt.Errorf("course %s already exists", id)
}

// CourseRepository stores each course tree as one document. Save is a compare-and-swap
// on the document version.
type CourseRepository interface {
	// Create stores a new course. The course keeps the version and timestamps it carries.
	Create(ctx context.Context, c *model.Course) error
	Get(ctx context.Context, id string) (*model.Course, error)
	// List returns every course in creation order
	List(ctx context.Context) ([]model.Course, error)
	// Save replaces the stored course if its version still equals expectedVersion. On
	// success c.Version is expectedVersion+1 and c.UpdatedAt is refreshed.
	Save(ctx context.Context, c *model.Course, expectedVersion int64) error
	Close(ctx context.Context) error
}

// nextUpdatedAt never moves updatedAt backwards, even when the clock does. The result is
// truncated to milliseconds, the precision every store keeps.
func nextUpdatedAt(prev time.Time) time.Time {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		return prev.Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return now
}

// stamp applies the fields a successful Save sets
func stamp(c *model.Course, expectedVersion int64) {
	c.Version = expectedVersion + 1
	c.UpdatedAt = nextUpdatedAt(c.UpdatedAt)
}
