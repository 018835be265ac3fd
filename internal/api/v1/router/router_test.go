package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"coursegpt/internal/config"
	"coursegpt/internal/generation"
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

func testConfig() *config.Config {
	return &config.Config{
		Environment:          "test",
		APIBaseURL:           "http://localhost:8080/v1",
		CORSAllowedOrigins:   "*",
		StoreBackend:         config.StoreMemory,
		GenerationTimeoutSec: 5,
	}
}

func newTestHandler(t *testing.T, gen generation.Generator) http.Handler {
	t.Helper()
	return NewHandler(testConfig(), Dependencies{
		Repo:      repository.NewMemoryRepo(),
		Generator: gen,
		Events:    pubsub.NoopEventPublisher{},
	}, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func createCourse(t *testing.T, h http.Handler) map[string]any {
	t.Helper()
	rec, body := do(t, h, http.MethodPost, "/v1/courses", map[string]any{
		"title":           "Go",
		"category":        "Programming",
		"difficultyLevel": "Beginner",
		"modules": []any{map[string]any{
			"title":   "Basics",
			"lessons": []any{map[string]any{"title": "Intro", "type": "lecture"}},
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Course created successfully", body["message"])
	return body["course"].(map[string]any)
}

func firstModule(course map[string]any) map[string]any {
	return course["modules"].([]any)[0].(map[string]any)
}

func firstLesson(course map[string]any) map[string]any {
	return firstModule(course)["lessons"].([]any)[0].(map[string]any)
}

func TestCourseEndpoints(t *testing.T) {
	h := newTestHandler(t, scriptedGenerator{})
	course := createCourse(t, h)
	id := course["id"].(string)
	assert.Equal(t, "Draft", course["status"])
	assert.Equal(t, float64(1), course["version"])

	rec, body := do(t, h, http.MethodGet, "/v1/courses/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Go", body["title"])

	rec, _ = do(t, h, http.MethodGet, "/v1/courses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, float64(1), list[0]["lessonCount"])

	rec, body = do(t, h, http.MethodPost, "/v1/courses/"+id+"/toggle-publish?version=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Course status updated to Published", body["message"])
	assert.Equal(t, "Published", body["course"].(map[string]any)["status"])
}

func TestModuleAndLessonEndpoints(t *testing.T) {
	h := newTestHandler(t, scriptedGenerator{})
	course := createCourse(t, h)
	id := course["id"].(string)
	moduleID := firstModule(course)["id"].(string)
	lessonID := firstLesson(course)["id"].(string)

	rec, body := do(t, h, http.MethodPost, "/v1/courses/"+id+"/modules", map[string]any{"title": "Channels"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Module added successfully", body["message"])
	assert.Equal(t, "Channels", body["module"].(map[string]any)["title"])

	rec, body = do(t, h, http.MethodPatch, "/v1/courses/"+id+"/modules/"+moduleID+"/lessons/"+lessonID,
		map[string]any{"id": "other", "content": "hello"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	lesson := firstLesson(body["course"].(map[string]any))
	assert.Equal(t, lessonID, lesson["id"])
	assert.Equal(t, "hello", lesson["content"])

	rec, body = do(t, h, http.MethodPost, "/v1/courses/"+id+"/modules/"+moduleID+"/lessons",
		map[string]any{"title": "Quiz", "type": "quiz"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Lesson added successfully", body["message"])

	rec, body = do(t, h, http.MethodDelete, "/v1/courses/"+id+"/modules/"+moduleID+"/lessons/"+lessonID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lesson deleted successfully", body["message"])

	rec, body = do(t, h, http.MethodDelete, "/v1/courses/"+id+"/modules/"+moduleID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["course"].(map[string]any)["modules"], 1)
}

func TestUpdateLessonTwiceGivesSameTree(t *testing.T) {
	h := newTestHandler(t, scriptedGenerator{})
	course := createCourse(t, h)
	id := course["id"].(string)
	path := "/v1/courses/" + id + "/modules/" + firstModule(course)["id"].(string) +
		"/lessons/" + firstLesson(course)["id"].(string)
	payload := map[string]any{
		"id":               "lesson-from-client",
		"title":            "Intro, revised",
		"type":             "lab",
		"content":          "hello",
		"learningOutcomes": []any{"say hello"},
	}

	rec, first := do(t, h, http.MethodPatch, path, payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, second := do(t, h, http.MethodPatch, path, payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	once := first["course"].(map[string]any)
	twice := second["course"].(map[string]any)
	assert.Equal(t, once["modules"], twice["modules"])
	assert.Equal(t, firstLesson(course)["id"], firstLesson(twice)["id"])
	assert.Equal(t, float64(3), twice["version"])
}

func TestErrorMapping(t *testing.T) {
	h := newTestHandler(t, scriptedGenerator{})
	course := createCourse(t, h)
	id := course["id"].(string)
	moduleID := firstModule(course)["id"].(string)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		detail string
	}{
		{"missing course", http.MethodGet, "/v1/courses/nope", nil, http.StatusNotFound, "Course not found"},
		{"missing module", http.MethodDelete, "/v1/courses/" + id + "/modules/nope", nil, http.StatusNotFound, "Module not found"},
		{"missing lesson", http.MethodPatch, "/v1/courses/" + id + "/modules/" + moduleID + "/lessons/nope", map[string]any{"title": "x"}, http.StatusNotFound, "Lesson not found"},
		{"bad enum", http.MethodPost, "/v1/courses/" + id + "/modules/" + moduleID + "/lessons", map[string]any{"title": "x", "type": "seminar"}, http.StatusBadRequest, ""},
		{"stale version", http.MethodPost, "/v1/courses/" + id + "/toggle-publish?version=7", nil, http.StatusConflict, ""},
		{"empty prompt", http.MethodPost, "/v1/generate/content", map[string]any{"title": " "}, http.StatusBadRequest, "Prompt is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.detail != "" {
				assert.Equal(t, tt.detail, body["detail"])
			}
		})
	}
}

func TestGenerateCourseEndpoint(t *testing.T) {
	h := newTestHandler(t, scriptedGenerator{
		generation.ScopeCourse: `{"title": "Rust", "category": "Programming", "difficultyLevel": "Advanced", "modules": []}`,
	})

	rec, body := do(t, h, http.MethodPost, "/v1/generate/course", map[string]any{"text": "rust ownership"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Course generated and saved successfully", body["message"])
	assert.Equal(t, true, body["persisted"])

	rec, _ = do(t, h, http.MethodGet, "/v1/courses/"+body["course"].(map[string]any)["id"].(string), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateMalformedOutput(t *testing.T) {
	h := newTestHandler(t, scriptedGenerator{generation.ScopeOutcomes: `{"not": "an array"}`})
	rec, _ := do(t, h, http.MethodPost, "/v1/generate/outcomes", map[string]any{"title": "maps"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGenerationUnavailable(t *testing.T) {
	h := newTestHandler(t, generation.UnavailableGenerator{Reason: "no key"})
	rec, _ := do(t, h, http.MethodPost, "/v1/generate/lesson", map[string]any{"title": "maps"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthRequiredWhenSecretSet(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "secret"
	h := NewHandler(cfg, Dependencies{
		Repo:      repository.NewMemoryRepo(),
		Generator: scriptedGenerator{},
		Events:    pubsub.NoopEventPublisher{},
	}, zerolog.Nop())

	rec, _ := do(t, h, http.MethodGet, "/v1/courses", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/v1/openapi.json", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, scriptedGenerator{})
	rec, _ := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOnlyVersionedRoutesAreServed(t *testing.T) {
	h := newTestHandler(t, scriptedGenerator{})
	for _, path := range []string{"/api/getAllCourses", "/api/courses", "/courses"} {
		rec, _ := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Empty(t, rec.Header().Get("Location"), path)
	}
}
