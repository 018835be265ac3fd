package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"coursegpt/internal/api/v1/router"
	"coursegpt/internal/config"
	"coursegpt/internal/coursetree"
	"coursegpt/internal/generation"
	"coursegpt/internal/model"
	"coursegpt/internal/pubsub"
	"coursegpt/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator map[generation.Scope]string

func (s scriptedGenerator) Generate(ctx context.Context, req generation.Request) (string, error) {
	return s[req.Scope], nil
}

// countingHandler counts requests that reach the API
type countingHandler struct {
	next  http.Handler
	count atomic.Int32
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.count.Add(1)
	c.next.ServeHTTP(w, r)
}

func newTestServer(t *testing.T, gen generation.Generator) (*Client, *countingHandler) {
	t.Helper()
	cfg := &config.Config{
		Environment:          "test",
		APIBaseURL:           "http://localhost:8080/v1",
		CORSAllowedOrigins:   "*",
		StoreBackend:         config.StoreMemory,
		GenerationTimeoutSec: 5,
	}
	h := &countingHandler{next: router.NewHandler(cfg, router.Dependencies{
		Repo:      repository.NewMemoryRepo(),
		Generator: gen,
		Events:    pubsub.NoopEventPublisher{},
	}, zerolog.Nop())}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/v1"), h
}

func sampleCourse() *model.Course {
	return &model.Course{
		Title:           "Go",
		Category:        "Programming",
		DifficultyLevel: model.DifficultyBeginner,
		Modules: []model.Module{{
			Title:   "Basics",
			Lessons: []model.Lesson{{Title: "Intro", Type: model.LessonLecture}},
		}},
	}
}

func TestClientCourseLifecycle(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestServer(t, scriptedGenerator{})

	course, err := c.CreateCourse(ctx, sampleCourse())
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, model.StatusDraft, course.Status)
	assert.Equal(t, int64(1), course.Version)

	list, err := c.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, course.ID, list[0].ID)

	course, err = c.TogglePublish(ctx, course.ID, course.Version)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, course.Status)
	assert.Equal(t, int64(2), course.Version)

	course, mod, err := c.AddModule(ctx, course.ID, &model.Module{Title: "Channels"}, course.Version)
	require.NoError(t, err)
	require.Len(t, course.Modules, 2)
	assert.NotEmpty(t, mod.ID)

	title := "Goroutines and channels"
	course, err = c.UpdateModule(ctx, course.ID, mod.ID, model.ModulePatch{Title: &title}, course.Version)
	require.NoError(t, err)
	assert.Equal(t, title, course.Modules[1].Title)

	course, lesson, err := c.AddLesson(ctx, course.ID, mod.ID, &model.Lesson{Title: "Select", Type: model.LessonQuiz}, course.Version)
	require.NoError(t, err)
	assert.NotEmpty(t, lesson.ID)

	content := "select waits on many channels"
	course, err = c.UpdateLesson(ctx, course.ID, mod.ID, lesson.ID, model.LessonPatch{Content: &content}, course.Version)
	require.NoError(t, err)
	assert.Equal(t, content, course.Modules[1].Lessons[0].Content)

	course, err = c.DeleteLesson(ctx, course.ID, mod.ID, lesson.ID, course.Version)
	require.NoError(t, err)
	assert.Empty(t, course.Modules[1].Lessons)

	course, err = c.DeleteModule(ctx, course.ID, mod.ID, course.Version)
	require.NoError(t, err)
	assert.Len(t, course.Modules, 1)
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestServer(t, scriptedGenerator{})

	_, err := c.GetCourse(ctx, "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Course not found", apiErr.Message)

	course, err := c.CreateCourse(ctx, sampleCourse())
	require.NoError(t, err)
	_, err = c.TogglePublish(ctx, course.ID, course.Version+3)
	assert.True(t, IsConflict(err))

	_, err = c.GenerateContent(ctx, "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestLessonPatchBody(t *testing.T) {
	title := "New"
	body := lessonPatchBody(model.LessonPatch{Title: &title, HasLearningOutcomes: true})
	assert.Equal(t, map[string]any{"title": "New", "learningOutcomes": []string{}}, body)

	assert.Empty(t, lessonPatchBody(model.LessonPatch{}))
	assert.Empty(t, modulePatchBody(model.ModulePatch{}))
}

func TestClientGeneration(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestServer(t, scriptedGenerator{
		generation.ScopeCourse:   `{"title": "Rust", "category": "Programming", "difficultyLevel": "Advanced", "modules": []}`,
		generation.ScopeOutcomes: `["borrow", "move"]`,
	})

	generated, err := c.GenerateCourse(ctx, "rust ownership")
	require.NoError(t, err)
	assert.True(t, generated.Persisted)
	assert.Equal(t, "Rust", generated.Course.Title)

	outcomes, err := c.GenerateOutcomes(ctx, "ownership")
	require.NoError(t, err)
	assert.Equal(t, []string{"borrow", "move"}, outcomes)
}

func TestSessionAppliesServerCopy(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestServer(t, scriptedGenerator{})
	created, err := c.CreateCourse(ctx, sampleCourse())
	require.NoError(t, err)

	s, err := OpenSession(ctx, c, created.ID)
	require.NoError(t, err)

	moduleID := created.Modules[0].ID
	course, err := s.AddLesson(ctx, moduleID, &model.Lesson{Title: "Maps", Type: model.LessonLab})
	require.NoError(t, err)
	require.Len(t, course.Modules[0].Lessons, 2)
	assert.Equal(t, int64(2), course.Version)

	stored, err := c.GetCourse(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Modules[0].Lessons[1].ID, s.Course().Modules[0].Lessons[1].ID)

	course, err = s.TogglePublish(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, course.Status)
	assert.Equal(t, int64(3), s.Course().Version)
}

func TestSessionLessonEdits(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestServer(t, scriptedGenerator{})
	created, err := c.CreateCourse(ctx, sampleCourse())
	require.NoError(t, err)
	s, err := OpenSession(ctx, c, created.ID)
	require.NoError(t, err)

	moduleID := created.Modules[0].ID
	lessonID := created.Modules[0].Lessons[0].ID
	content := "goroutines are cheap"
	course, err := s.UpdateLesson(ctx, moduleID, lessonID, model.LessonPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, course.Modules[0].Lessons[0].Content)
	assert.Equal(t, lessonID, course.Modules[0].Lessons[0].ID)
	assert.Equal(t, int64(2), course.Version)

	course, err = s.DeleteLesson(ctx, moduleID, lessonID)
	require.NoError(t, err)
	assert.Empty(t, course.Modules[0].Lessons)

	stored, err := c.GetCourse(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Version, s.Course().Version)
	assert.Empty(t, stored.Modules[0].Lessons)
}

func TestSessionRefetchesAfterConflict(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestServer(t, scriptedGenerator{})
	created, err := c.CreateCourse(ctx, sampleCourse())
	require.NoError(t, err)

	s, err := OpenSession(ctx, c, created.ID)
	require.NoError(t, err)

	title := "Renamed elsewhere"
	_, err = c.UpdateModule(ctx, created.ID, created.Modules[0].ID, model.ModulePatch{Title: &title}, 0)
	require.NoError(t, err)

	_, err = s.DeleteModule(ctx, created.Modules[0].ID)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	course := s.Course()
	require.Len(t, course.Modules, 1)
	assert.Equal(t, title, course.Modules[0].Title)
	assert.Equal(t, int64(2), course.Version)
}

func TestSessionLocalErrorSkipsServer(t *testing.T) {
	ctx := context.Background()
	c, h := newTestServer(t, scriptedGenerator{})
	created, err := c.CreateCourse(ctx, sampleCourse())
	require.NoError(t, err)
	s, err := OpenSession(ctx, c, created.ID)
	require.NoError(t, err)

	before := h.count.Load()
	title := "x"
	_, err = s.UpdateModule(ctx, "missing", model.ModulePatch{Title: &title})
	assert.ErrorIs(t, err, coursetree.ErrModuleNotFound)
	assert.Equal(t, before, h.count.Load())
	assert.Equal(t, created.Version, s.Course().Version)
}

func TestSessionGenerateModule(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestServer(t, scriptedGenerator{
		generation.ScopeModule: `{"title": "Channels", "description": "Typed pipes", "lessons": [{"title": "Buffered", "type": "lab"}]}`,
	})
	created, err := c.CreateCourse(ctx, sampleCourse())
	require.NoError(t, err)
	s, err := OpenSession(ctx, c, created.ID)
	require.NoError(t, err)

	res, err := s.GenerateModule(ctx, "channels")
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.Equal(t, "Channels", res.Module.Title)
	assert.Zero(t, s.Pending())

	course := s.Course()
	require.Len(t, course.Modules, 2)
	assert.Equal(t, "Channels", course.Modules[1].Title)
}
