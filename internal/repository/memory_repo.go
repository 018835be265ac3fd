package repository

import (
	"context"
	"sync"

	"coursegpt/internal/model"
)

type memoryRepo struct {
	mu      sync.RWMutex
	courses map[string]*model.Course
	order   []string
}

// NewMemoryRepo creates a CourseRepository kept in process memory. Values are deep copied on
// the way in and out.
func NewMemoryRepo() CourseRepository {
	return &memoryRepo{courses: make(map[string]*model.Course)}
}

func (r *memoryRepo) Create(ctx context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.courses[c.ID]; exists {
		return persistErr("create", errDuplicateID(c.ID))
	}
	r.courses[c.ID] = c.Clone()
	r.order = append(r.order, c.ID)
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, ErrCourseNotFound
	}
	return c.Clone(), nil
}

func (r *memoryRepo) List(ctx context.Context) ([]model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	courses := make([]model.Course, 0, len(r.order))
	for _, id := range r.order {
		courses = append(courses, *r.courses[id].Clone())
	}
	return courses, nil
}

func (r *memoryRepo) Save(ctx context.Context, c *model.Course, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.courses[c.ID]
	if !ok {
		return ErrCourseNotFound
	}
	if stored.Version != expectedVersion {
		return ErrVersionConflict
	}
	stamp(c, expectedVersion)
	c.CreatedAt = stored.CreatedAt
	r.courses[c.ID] = c.Clone()
	return nil
}

func (r *memoryRepo) Close(ctx context.Context) error {
	return nil
}
