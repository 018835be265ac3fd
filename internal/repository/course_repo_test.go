package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursegpt/internal/coursetree"
	"coursegpt/internal/model"
)

// newCourse prepares a course the way the service does before its first save
func newCourse(title string, created time.Time) *model.Course {
	m := coursetree.NewMutator(coursetree.UUIDGenerator{}, func() time.Time { return created })
	return m.NewCourse(&model.Course{
		Title:           title,
		Category:        "Programming",
		DifficultyLevel: model.DifficultyBeginner,
		Status:          model.StatusDraft,
		Modules: []model.Module{{
			ID:    "module-1",
			Title: "Basics",
			Lessons: []model.Lesson{{
				ID:                  "lesson-1",
				Title:               "Intro",
				Type:                model.LessonLecture,
				LearningOutcomes:    []string{"explain goroutines"},
				AdditionalResources: []model.Resource{{Title: "Tour", URL: "https://go.dev/tour", Type: "link"}},
			}},
		}},
	})
}

// runRepositoryContract exercises the behaviour every backend must share
func runRepositoryContract(t *testing.T, repo CourseRepository) {
	ctx := context.Background()
	base := time.Now()

	t.Run("create and get", func(t *testing.T) {
		c := newCourse("Go", base)
		require.NoError(t, repo.Create(ctx, c))

		got, err := repo.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Title, got.Title)
		assert.Equal(t, int64(1), got.Version)
		require.Len(t, got.Modules, 1)
		assert.Equal(t, "lesson-1", got.Modules[0].Lessons[0].ID)
		assert.Equal(t, []string{"explain goroutines"}, got.Modules[0].Lessons[0].LearningOutcomes)
		assert.True(t, c.CreatedAt.Equal(got.CreatedAt), "createdAt %v reloaded as %v", c.CreatedAt, got.CreatedAt)
	})

	t.Run("round trip keeps the whole tree", func(t *testing.T) {
		c := newCourse("Go", base)
		c.Description = "Concurrency in practice"
		c.Thumbnail = "https://example.com/go.png"
		c.Modules = append(c.Modules, model.Module{
			ID:          "module-2",
			Title:       "Channels",
			Description: "select and friends",
			Lessons: []model.Lesson{
				{ID: "lesson-2", Title: "Buffered", Type: model.LessonLab, Content: "make(chan int, 1)",
					LearningOutcomes: []string{}, AdditionalResources: []model.Resource{}},
				{ID: "lesson-3", Title: "Check", Type: model.LessonQuiz,
					LearningOutcomes: []string{"a", "b"}, AdditionalResources: []model.Resource{}},
			},
		})
		require.NoError(t, repo.Create(ctx, c))

		c.Status = model.StatusPublished
		require.NoError(t, repo.Save(ctx, c, 1))

		got, err := repo.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, c.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %v reloaded as %v", c.UpdatedAt, got.UpdatedAt)
		assert.True(t, c.CreatedAt.Equal(got.CreatedAt), "createdAt %v reloaded as %v", c.CreatedAt, got.CreatedAt)

		want := c.Clone()
		want.CreatedAt, want.UpdatedAt = time.Time{}, time.Time{}
		got.CreatedAt, got.UpdatedAt = time.Time{}, time.Time{}
		assert.Equal(t, want, got)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})

	t.Run("list keeps creation order", func(t *testing.T) {
		first := newCourse("first", base.Add(time.Second))
		second := newCourse("second", base.Add(2*time.Second))
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		courses, err := repo.List(ctx)
		require.NoError(t, err)
		pos := map[string]int{}
		for i, c := range courses {
			pos[c.ID] = i
		}
		require.Contains(t, pos, first.ID)
		require.Contains(t, pos, second.ID)
		assert.Less(t, pos[first.ID], pos[second.ID])
	})

	t.Run("save bumps version", func(t *testing.T) {
		c := newCourse("Go", base)
		require.NoError(t, repo.Create(ctx, c))

		c.Title = "Go, revised"
		require.NoError(t, repo.Save(ctx, c, 1))
		assert.Equal(t, int64(2), c.Version)
		assert.True(t, c.UpdatedAt.After(c.CreatedAt))
		assert.Zero(t, c.UpdatedAt.Nanosecond()%int(time.Millisecond))

		got, err := repo.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Go, revised", got.Title)
		assert.Equal(t, int64(2), got.Version)
	})

	t.Run("save with stale version conflicts", func(t *testing.T) {
		c := newCourse("Go", base)
		require.NoError(t, repo.Create(ctx, c))
		require.NoError(t, repo.Save(ctx, c, 1))

		stale := *c
		stale.Title = "lost update"
		err := repo.Save(ctx, &stale, 1)
		assert.ErrorIs(t, err, ErrVersionConflict)

		got, err := repo.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Go", got.Title)
	})

	t.Run("save missing course", func(t *testing.T) {
		err := repo.Save(ctx, newCourse("ghost", base), 1)
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestMemoryRepo(t *testing.T) {
	runRepositoryContract(t, NewMemoryRepo())
}

func TestMemoryRepoIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	c := newCourse("Go", time.Now())
	require.NoError(t, repo.Create(ctx, c))

	c.Modules[0].Title = "changed by caller"
	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Basics", got.Modules[0].Title)

	got.Modules[0].Lessons[0].Title = "changed again"
	again, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro", again.Modules[0].Lessons[0].Title)
}

func TestMemoryRepoDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	c := newCourse("Go", time.Now())
	require.NoError(t, repo.Create(ctx, c))
	assert.ErrorIs(t, repo.Create(ctx, c), ErrPersistence)
}

func TestPostgresRepo(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN is not set, skip Postgres integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, MigratePostgres(ctx, pool))

	repo := NewPostgresRepo(pool)
	t.Cleanup(func() { _ = repo.Close(ctx) })
	runRepositoryContract(t, repo)
}

func TestSurrealRepo(t *testing.T) {
	endpoint := os.Getenv("TEST_SURREALDB_URL")
	if endpoint == "" {
		t.Skip("TEST_SURREALDB_URL is not set, skip SurrealDB integration test")
	}
	ctx := context.Background()
	repo, err := NewSurrealRepo(ctx, endpoint, "coursegpt_test", "coursegpt_test", "root", "root")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(ctx) })
	runRepositoryContract(t, repo)
}

func TestMongoRepo(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI is not set, skip MongoDB integration test")
	}
	ctx := context.Background()
	repo, err := NewMongoRepo(ctx, uri, "coursegpt_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(ctx) })
	runRepositoryContract(t, repo)
}

func TestNextUpdatedAt(t *testing.T) {
	now := time.Now().UTC()

	next := nextUpdatedAt(now.Add(-time.Hour))
	assert.Zero(t, next.Nanosecond()%int(time.Millisecond))
	assert.True(t, next.After(now.Add(-time.Hour)))

	ahead := now.Add(time.Hour).Add(123456 * time.Nanosecond)
	next = nextUpdatedAt(ahead)
	assert.True(t, next.After(ahead), "a clock behind the stored value must not move updatedAt back")
	assert.Zero(t, next.Nanosecond()%int(time.Millisecond))
}

func TestPersistenceError(t *testing.T) {
	err := persistErr("save", assert.AnError)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "save course: "+assert.AnError.Error(), err.Error())
}
