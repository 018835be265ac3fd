package service

import (
	"context"
	"fmt"

	"coursegpt/internal/coursetree"
	"coursegpt/internal/model"
	"coursegpt/internal/pubsub"
	"coursegpt/internal/repository"
	"coursegpt/internal/schema"

	"github.com/rs/zerolog"
)

// CourseService defines course-related operations. Every mutation takes an expected
// version; 0 skips the check.
type CourseService interface {
	CreateCourse(ctx context.Context, payload any) (*model.Course, error)
	ListCourses(ctx context.Context) ([]model.CourseSummary, error)
	GetCourse(ctx context.Context, courseID string) (*model.Course, error)
	TogglePublish(ctx context.Context, courseID string, expectedVersion int64) (*model.Course, error)

	AddModule(ctx context.Context, courseID string, payload any, expectedVersion int64) (*model.Course, *model.Module, error)
	UpdateModule(ctx context.Context, courseID, moduleID string, payload any, expectedVersion int64) (*model.Course, error)
	DeleteModule(ctx context.Context, courseID, moduleID string, expectedVersion int64) (*model.Course, error)

	AddLesson(ctx context.Context, courseID, moduleID string, payload any, expectedVersion int64) (*model.Course, *model.Lesson, error)
	UpdateLesson(ctx context.Context, courseID, moduleID, lessonID string, payload any, expectedVersion int64) (*model.Course, error)
	DeleteLesson(ctx context.Context, courseID, moduleID, lessonID string, expectedVersion int64) (*model.Course, error)
}

// committer runs the load, mutate, save and announce cycle shared by every course mutation
type committer struct {
	repo    repository.CourseRepository
	mutator *coursetree.Mutator
	events  pubsub.EventPublisher
	logger  zerolog.Logger
}

// mutation returns the changed tree. A nil tree with a nil error means nothing changed.
type mutation func(c *model.Course) (*model.Course, error)

func (m *committer) load(ctx context.Context, courseID string, expectedVersion int64) (*model.Course, error) {
	c, err := m.repo.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if expectedVersion != 0 && c.Version != expectedVersion {
		return nil, fmt.Errorf("%w: course %s is at version %d, not %d", repository.ErrVersionConflict, courseID, c.Version, expectedVersion)
	}
	return c, nil
}

func (m *committer) commit(ctx context.Context, courseID string, expectedVersion int64, op string, fn mutation) (*model.Course, error) {
	c, err := m.load(ctx, courseID, expectedVersion)
	if err != nil {
		return nil, err
	}
	updated, err := fn(c)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// nothing changed: no save, no version bump, no event
		return c, nil
	}
	if err := m.repo.Save(ctx, updated, c.Version); err != nil {
		m.logger.Error().Err(err).Str("course_id", courseID).Str("operation", op).Msg("Failed to save course")
		return nil, err
	}
	m.announce(ctx, updated, op)
	return updated, nil
}

func (m *committer) announce(ctx context.Context, c *model.Course, op string) {
	event := model.CourseEvent{CourseID: c.ID, Operation: op, Version: c.Version, UpdatedAt: c.UpdatedAt}
	if err := m.events.PublishCourseEvent(ctx, event); err != nil {
		m.logger.Warn().Err(err).Str("course_id", c.ID).Str("operation", op).Msg("Failed to publish course event")
	}
}

// courseService is the implementation of CourseService
type courseService struct {
	committer
}

// NewCourseService creates a new CourseService
func NewCourseService(repo repository.CourseRepository, mutator *coursetree.Mutator, events pubsub.EventPublisher, logger zerolog.Logger) CourseService {
	if events == nil {
		events = pubsub.NoopEventPublisher{}
	}
	return &courseService{committer{
		repo:    repo,
		mutator: mutator,
		events:  events,
		logger:  logger.With().Str("service", "CourseService").Logger(),
	}}
}

func (s *courseService) CreateCourse(ctx context.Context, payload any) (*model.Course, error) {
	draft, err := schema.Course(payload)
	if err != nil {
		return nil, err
	}
	c := s.mutator.NewCourse(draft)
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("course_id", c.ID).Msg("Failed to create course")
		return nil, err
	}
	s.announce(ctx, c, "createCourse")
	return c, nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]model.CourseSummary, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list courses")
		return nil, err
	}
	summaries := make([]model.CourseSummary, 0, len(courses))
	for i := range courses {
		summaries = append(summaries, courses[i].Summary())
	}
	return summaries, nil
}

func (s *courseService) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	return s.repo.Get(ctx, courseID)
}

func (s *courseService) TogglePublish(ctx context.Context, courseID string, expectedVersion int64) (*model.Course, error) {
	return s.commit(ctx, courseID, expectedVersion, "togglePublish", func(c *model.Course) (*model.Course, error) {
		return s.mutator.TogglePublish(c), nil
	})
}

func (s *courseService) AddModule(ctx context.Context, courseID string, payload any, expectedVersion int64) (*model.Course, *model.Module, error) {
	mod, err := schema.Module(payload)
	if err != nil {
		return nil, nil, err
	}
	var added model.Module
	c, err := s.commit(ctx, courseID, expectedVersion, "addModule", func(c *model.Course) (*model.Course, error) {
		out, m := s.mutator.AddModule(c, mod)
		added = *m
		return out, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return c, &added, nil
}

func (s *courseService) UpdateModule(ctx context.Context, courseID, moduleID string, payload any, expectedVersion int64) (*model.Course, error) {
	patch, err := schema.ModulePatch(payload)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, courseID, expectedVersion, "updateModule", func(c *model.Course) (*model.Course, error) {
		if patch.IsEmpty() {
			_, err := coursetree.FindModule(c, moduleID)
			return nil, err
		}
		return s.mutator.UpdateModule(c, moduleID, patch)
	})
}

func (s *courseService) DeleteModule(ctx context.Context, courseID, moduleID string, expectedVersion int64) (*model.Course, error) {
	return s.commit(ctx, courseID, expectedVersion, "deleteModule", func(c *model.Course) (*model.Course, error) {
		return s.mutator.DeleteModule(c, moduleID)
	})
}

func (s *courseService) AddLesson(ctx context.Context, courseID, moduleID string, payload any, expectedVersion int64) (*model.Course, *model.Lesson, error) {
	l, err := schema.Lesson(payload)
	if err != nil {
		return nil, nil, err
	}
	var added model.Lesson
	c, err := s.commit(ctx, courseID, expectedVersion, "addLesson", func(c *model.Course) (*model.Course, error) {
		out, nl, err := s.mutator.AddLesson(c, moduleID, l)
		if err != nil {
			return nil, err
		}
		added = *nl
		return out, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return c, &added, nil
}

func (s *courseService) UpdateLesson(ctx context.Context, courseID, moduleID, lessonID string, payload any, expectedVersion int64) (*model.Course, error) {
	patch, err := schema.LessonPatch(payload)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, courseID, expectedVersion, "updateLesson", func(c *model.Course) (*model.Course, error) {
		if patch.IsEmpty() {
			_, err := coursetree.FindLesson(c, moduleID, lessonID)
			return nil, err
		}
		return s.mutator.UpdateLesson(c, moduleID, lessonID, patch)
	})
}

func (s *courseService) DeleteLesson(ctx context.Context, courseID, moduleID, lessonID string, expectedVersion int64) (*model.Course, error) {
	return s.commit(ctx, courseID, expectedVersion, "deleteLesson", func(c *model.Course) (*model.Course, error) {
		return s.mutator.DeleteLesson(c, moduleID, lessonID)
	})
}
