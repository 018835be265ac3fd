package client

import (
	"context"
	"sync"
	"sync/atomic"

	"coursegpt/internal/coursetree"
	"coursegpt/internal/model"
)

// CourseSession keeps a local copy of one course for an editor. Each edit is applied to
// the local copy first, then sent with the copy's version. The server's answer replaces
// the local copy; when the server rejects the edit the course is fetched again, so the
// copy never keeps an edit the server did not commit.
type CourseSession struct {
	client   *Client
	courseID string
	mutator  *coursetree.Mutator

	// ops serializes edits so each one carries the version the previous one produced
	ops sync.Mutex

	mu     sync.RWMutex
	course *model.Course

	pending atomic.Int32
}

// OpenSession fetches the course and starts a session on it
func OpenSession(ctx context.Context, c *Client, courseID string) (*CourseSession, error) {
	course, err := c.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return &CourseSession{
		client:   c,
		courseID: courseID,
		mutator:  coursetree.NewMutator(nil, nil),
		course:   course,
	}, nil
}

// Course returns a copy of the current local course
func (s *CourseSession) Course() *model.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.course.Clone()
}

// Pending reports how many generation calls are in flight
func (s *CourseSession) Pending() int {
	return int(s.pending.Load())
}

// adopt replaces the local course unless c is older than what the session already holds
func (s *CourseSession) adopt(c *model.Course) {
	if c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.course == nil || c.Version >= s.course.Version {
		s.course = c
	}
}

// Refresh reloads the course from the server
func (s *CourseSession) Refresh(ctx context.Context) error {
	c, err := s.client.GetCourse(ctx, s.courseID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.course = c
	s.mu.Unlock()
	return nil
}

// apply runs local against the current copy and remote against the server. A local
// failure is returned without calling the server.
func (s *CourseSession) apply(
	ctx context.Context,
	local func(c *model.Course) (*model.Course, error),
	remote func(ctx context.Context, version int64) (*model.Course, error),
) (*model.Course, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	s.mu.Lock()
	base := s.course
	optimistic, err := local(base)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.course = optimistic
	s.mu.Unlock()

	updated, err := remote(ctx, base.Version)
	if err != nil {
		if refreshErr := s.Refresh(ctx); refreshErr != nil {
			s.client.logger.Warn().Err(refreshErr).Str("course_id", s.courseID).Msg("Failed to refetch course after rejected edit")
			s.mu.Lock()
			s.course = base
			s.mu.Unlock()
		}
		return nil, err
	}

	s.mu.Lock()
	s.course = updated
	s.mu.Unlock()
	return updated.Clone(), nil
}

func (s *CourseSession) TogglePublish(ctx context.Context) (*model.Course, error) {
	return s.apply(ctx,
		func(c *model.Course) (*model.Course, error) {
			return s.mutator.TogglePublish(c), nil
		},
		func(ctx context.Context, version int64) (*model.Course, error) {
			return s.client.TogglePublish(ctx, s.courseID, version)
		})
}

func (s *CourseSession) AddModule(ctx context.Context, m *model.Module) (*model.Course, error) {
	return s.apply(ctx,
		func(c *model.Course) (*model.Course, error) {
			out, _ := s.mutator.AddModule(c, m)
			return out, nil
		},
		func(ctx context.Context, version int64) (*model.Course, error) {
			c, _, err := s.client.AddModule(ctx, s.courseID, m, version)
			return c, err
		})
}

func (s *CourseSession) UpdateModule(ctx context.Context, moduleID string, patch model.ModulePatch) (*model.Course, error) {
	return s.apply(ctx,
		func(c *model.Course) (*model.Course, error) {
			return s.mutator.UpdateModule(c, moduleID, patch)
		},
		func(ctx context.Context, version int64) (*model.Course, error) {
			return s.client.UpdateModule(ctx, s.courseID, moduleID, patch, version)
		})
}

func (s *CourseSession) DeleteModule(ctx context.Context, moduleID string) (*model.Course, error) {
	return s.apply(ctx,
		func(c *model.Course) (*model.Course, error) {
			return s.mutator.DeleteModule(c, moduleID)
		},
		func(ctx context.Context, version int64) (*model.Course, error) {
			return s.client.DeleteModule(ctx, s.courseID, moduleID, version)
		})
}

func (s *CourseSession) AddLesson(ctx context.Context, moduleID string, l *model.Lesson) (*model.Course, error) {
	return s.apply(ctx,
		func(c *model.Course) (*model.Course, error) {
			out, _, err := s.mutator.AddLesson(c, moduleID, l)
			return out, err
		},
		func(ctx context.Context, version int64) (*model.Course, error) {
			c, _, err := s.client.AddLesson(ctx, s.courseID, moduleID, l, version)
			return c, err
		})
}

func (s *CourseSession) UpdateLesson(ctx context.Context, moduleID, lessonID string, patch model.LessonPatch) (*model.Course, error) {
	return s.apply(ctx,
		func(c *model.Course) (*model.Course, error) {
			return s.mutator.UpdateLesson(c, moduleID, lessonID, patch)
		},
		func(ctx context.Context, version int64) (*model.Course, error) {
			return s.client.UpdateLesson(ctx, s.courseID, moduleID, lessonID, patch, version)
		})
}

func (s *CourseSession) DeleteLesson(ctx context.Context, moduleID, lessonID string) (*model.Course, error) {
	return s.apply(ctx,
		func(c *model.Course) (*model.Course, error) {
			return s.mutator.DeleteLesson(c, moduleID, lessonID)
		},
		func(ctx context.Context, version int64) (*model.Course, error) {
			return s.client.DeleteLesson(ctx, s.courseID, moduleID, lessonID, version)
		})
}

// GenerateModule asks the server for a module on topic. Edits may continue while it runs;
// the stored course is adopted when the module was saved.
func (s *CourseSession) GenerateModule(ctx context.Context, topic string) (*GeneratedModule, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)

	res, err := s.client.GenerateModule(ctx, s.courseID, topic)
	if err != nil {
		return nil, err
	}
	if res.Persisted {
		s.adopt(res.Course)
	}
	return res, nil
}

func (s *CourseSession) RegenerateLessonContent(ctx context.Context, moduleID, lessonID string) (*RegeneratedContent, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)

	s.mu.RLock()
	version := s.course.Version
	s.mu.RUnlock()

	res, err := s.client.RegenerateLessonContent(ctx, s.courseID, moduleID, lessonID, version)
	if err != nil {
		if IsConflict(err) {
			_ = s.Refresh(ctx)
		}
		return nil, err
	}
	if res.Persisted {
		s.adopt(res.Course)
	}
	return res, nil
}
