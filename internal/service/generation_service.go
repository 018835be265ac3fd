package service

import (
	"context"

	"coursegpt/internal/coursetree"
	"coursegpt/internal/generation"
	"coursegpt/internal/model"
	"coursegpt/internal/pubsub"
	"coursegpt/internal/repository"
	"coursegpt/internal/schema"

	"github.com/rs/zerolog"
)

// GeneratedCourse is a validated generated course. When the save failed the course is
// still returned with Persisted false.
type GeneratedCourse struct {
	Course     *model.Course
	Persisted  bool
	PersistErr error
}

// GeneratedModule carries the generated module and, once it was saved, the course it was
// appended to.
type GeneratedModule struct {
	Module     *model.Module
	Course     *model.Course
	Persisted  bool
	PersistErr error
}

type RegeneratedContent struct {
	Content    string
	Course     *model.Course
	Persisted  bool
	PersistErr error
}

// GenerationService asks the model for course parts, validates what comes back and
// merges it into stored courses.
type GenerationService interface {
	GenerateCourse(ctx context.Context, prompt string) (*GeneratedCourse, error)
	GenerateModule(ctx context.Context, courseID, topic string) (*GeneratedModule, error)
	GenerateLesson(ctx context.Context, title string) (*model.Lesson, error)
	GenerateLessonContent(ctx context.Context, title string) (string, error)
	GenerateOutcomes(ctx context.Context, title string) ([]string, error)
	RegenerateLessonContent(ctx context.Context, courseID, moduleID, lessonID string, expectedVersion int64) (*RegeneratedContent, error)
}

type generationService struct {
	committer
	pipeline *generation.Pipeline
}

func NewGenerationService(pipeline *generation.Pipeline, repo repository.CourseRepository, mutator *coursetree.Mutator, events pubsub.EventPublisher, logger zerolog.Logger) GenerationService {
	if events == nil {
		events = pubsub.NoopEventPublisher{}
	}
	return &generationService{
		committer: committer{
			repo:    repo,
			mutator: mutator,
			events:  events,
			logger:  logger.With().Str("service", "GenerationService").Logger(),
		},
		pipeline: pipeline,
	}
}

// run builds and runs a request, then decodes the answer with decode. Output that does not
// fit the requested shape is reported as malformed.
func run[T any](ctx context.Context, p *generation.Pipeline, build func() (generation.Request, error), decode func(any) (T, error)) (T, error) {
	var zero T
	req, err := build()
	if err != nil {
		return zero, err
	}
	v, err := p.Run(ctx, req)
	if err != nil {
		return zero, err
	}
	out, err := decode(v)
	if err != nil {
		return zero, &generation.MalformedOutputError{Scope: req.Scope, Err: err}
	}
	return out, nil
}

func (s *generationService) GenerateCourse(ctx context.Context, prompt string) (*GeneratedCourse, error) {
	draft, err := run(ctx, s.pipeline, func() (generation.Request, error) {
		return generation.CourseRequest(prompt)
	}, schema.Course)
	if err != nil {
		return nil, err
	}

	c := s.mutator.NewCourse(draft)
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("course_id", c.ID).Msg("Generated course could not be saved")
		return &GeneratedCourse{Course: c, PersistErr: err}, nil
	}
	s.announce(ctx, c, "generateCourse")
	return &GeneratedCourse{Course: c, Persisted: true}, nil
}

// GenerateModule generates a module for an existing course and appends it. The append is
// applied to the course as stored after generation, so edits made meanwhile are kept.
func (s *generationService) GenerateModule(ctx context.Context, courseID, topic string) (*GeneratedModule, error) {
	c, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	mod, err := run(ctx, s.pipeline, func() (generation.Request, error) {
		return generation.ModuleRequest(topic, c.Title)
	}, schema.Module)
	if err != nil {
		return nil, err
	}

	var added model.Module
	updated, err := s.commit(ctx, courseID, 0, "generateModule", func(c *model.Course) (*model.Course, error) {
		out, m := s.mutator.AddModule(c, mod)
		added = *m
		return out, nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Generated module could not be saved")
		return &GeneratedModule{Module: mod, PersistErr: err}, nil
	}
	return &GeneratedModule{Module: &added, Course: updated, Persisted: true}, nil
}

func (s *generationService) GenerateLesson(ctx context.Context, title string) (*model.Lesson, error) {
	return run(ctx, s.pipeline, func() (generation.Request, error) {
		return generation.LessonRequest(title)
	}, schema.Lesson)
}

func (s *generationService) GenerateLessonContent(ctx context.Context, title string) (string, error) {
	return run(ctx, s.pipeline, func() (generation.Request, error) {
		return generation.LessonContentRequest(title)
	}, schema.LessonContent)
}

func (s *generationService) GenerateOutcomes(ctx context.Context, title string) ([]string, error) {
	return run(ctx, s.pipeline, func() (generation.Request, error) {
		return generation.OutcomesRequest(title)
	}, schema.Outcomes)
}

// RegenerateLessonContent replaces a stored lesson's content with freshly generated text
// for its title. Only the content field is written back.
func (s *generationService) RegenerateLessonContent(ctx context.Context, courseID, moduleID, lessonID string, expectedVersion int64) (*RegeneratedContent, error) {
	c, err := s.load(ctx, courseID, expectedVersion)
	if err != nil {
		return nil, err
	}
	l, err := coursetree.FindLesson(c, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	content, err := run(ctx, s.pipeline, func() (generation.Request, error) {
		return generation.LessonContentRequest(l.Title)
	}, schema.LessonContent)
	if err != nil {
		return nil, err
	}

	patch := model.LessonPatch{Content: &content}
	updated, err := s.commit(ctx, courseID, 0, "regenerateLessonContent", func(c *model.Course) (*model.Course, error) {
		return s.mutator.UpdateLesson(c, moduleID, lessonID, patch)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Str("lesson_id", lessonID).Msg("Regenerated content could not be saved")
		return &RegeneratedContent{Content: content, PersistErr: err}, nil
	}
	return &RegeneratedContent{Content: content, Course: updated, Persisted: true}, nil
}
