package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *GeminiGenerator {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1beta/models/test-model:generateContent"), r.URL.Path)
		key := r.URL.Query().Get("key")
		if key == "" {
			key = r.Header.Get("X-Goog-Api-Key")
		}
		assert.Equal(t, "test-key", key)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		handler(w, body)
	}))
	t.Cleanup(srv.Close)

	g, err := NewGeminiGenerator(context.Background(), "test-key", "test-model", srv.URL, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestGeminiGenerate(t *testing.T) {
	var captured map[string]any
	g := newGeminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		captured = body
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "{\"content\":"}, {"text": "\"body\"}"}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5}
		}`))
	})

	req, err := LessonContentRequest("Maps")
	require.NoError(t, err)
	text, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"content":"body"}`, text)

	assert.Equal(t, "models/test-model", captured["model"])
	contents := captured["contents"].([]any)
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].(map[string]any)["role"])
	assert.Equal(t, "Maps", contents[0].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"])

	system := captured["systemInstruction"].(map[string]any)
	assert.Equal(t, contentInstruction, system["parts"].([]any)[0].(map[string]any)["text"])

	config := captured["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", config["responseMimeType"])
	schema := config["responseSchema"].(map[string]any)
	// enums are sent as numbers; 6 is OBJECT
	assert.EqualValues(t, 6, schema["type"])
	assert.Contains(t, schema["properties"], "content")
	assert.Equal(t, []any{"content"}, schema["required"])
}

func TestGeminiSendsNestedSchema(t *testing.T) {
	var captured map[string]any
	g := newGeminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		captured = body
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`))
	})

	req, err := CourseRequest("Go")
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), req)
	require.NoError(t, err)

	schema := captured["generationConfig"].(map[string]any)["responseSchema"].(map[string]any)
	ordering := schema["propertyOrdering"].([]any)
	assert.Equal(t, "title", ordering[0])

	modules := schema["properties"].(map[string]any)["modules"].(map[string]any)
	assert.EqualValues(t, 5, modules["type"]) // ARRAY
	lessons := modules["items"].(map[string]any)["properties"].(map[string]any)["lessons"].(map[string]any)
	lessonType := lessons["items"].(map[string]any)["properties"].(map[string]any)["type"].(map[string]any)
	assert.Equal(t, "enum", lessonType["format"])
	assert.Equal(t, []any{"lecture", "quiz", "lab"}, lessonType["enum"])
}

func TestGeminiAPIError(t *testing.T) {
	g := newGeminiServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	req, _ := CourseRequest("Go")
	_, err := g.Generate(context.Background(), req)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ScopeCourse, svcErr.Scope)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Contains(t, svcErr.Error(), "API key not valid")
}

func TestGeminiBlockedPrompt(t *testing.T) {
	g := newGeminiServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	req, _ := CourseRequest("Go")
	_, err := g.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrGenerationService)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestGeminiEmptyCandidate(t *testing.T) {
	g := newGeminiServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"MAX_TOKENS"}]}`))
	})

	req, _ := CourseRequest("Go")
	_, err := g.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrGenerationService)
	assert.Contains(t, err.Error(), "MAX_TOKENS")
}

func TestGeminiNoCandidates(t *testing.T) {
	g := newGeminiServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = w.Write([]byte(`{}`))
	})

	req, _ := LessonRequest("Goroutines")
	_, err := g.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrGenerationService)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "", "", zerolog.Nop())
	assert.Error(t, err)
}
