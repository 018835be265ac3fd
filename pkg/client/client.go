// Package client is a Go client for the course API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coursegpt/internal/model"

	"github.com/rs/zerolog"
)

const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response. Message is the server's detail when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("course API returned status %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client and its 30 second timeout
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithToken sends token as a bearer token on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8080/v1
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("service", "CourseClient").Logger()
	return c
}

type courseResponse struct {
	Message string       `json:"message"`
	Course  model.Course `json:"course"`
}

type moduleResponse struct {
	Message string       `json:"message"`
	Module  model.Module `json:"module"`
	Course  model.Course `json:"course"`
}

type lessonResponse struct {
	Message string       `json:"message"`
	Lesson  model.Lesson `json:"lesson"`
	Course  model.Course `json:"course"`
}

type GeneratedCourse struct {
	Message   string       `json:"message"`
	Course    model.Course `json:"course"`
	Persisted bool         `json:"persisted"`
	Error     string       `json:"error,omitempty"`
}

type GeneratedModule struct {
	Message   string        `json:"message"`
	Module    model.Module  `json:"module"`
	Course    *model.Course `json:"course,omitempty"`
	Persisted bool          `json:"persisted"`
	Error     string        `json:"error,omitempty"`
}

type RegeneratedContent struct {
	Message   string        `json:"message"`
	Content   string        `json:"content"`
	Course    *model.Course `json:"course,omitempty"`
	Persisted bool          `json:"persisted"`
	Error     string        `json:"error,omitempty"`
}

// problem is the error body the API sends
type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, version int64, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	target := c.baseURL + path
	if version != 0 {
		target += "?" + url.Values{"version": {strconv.FormatInt(version, 10)}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("making request to course API: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.logger.Warn().Err(readErr).Int("status_code", resp.StatusCode).Msg("Failed to read error body from course API")
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(bodyBytes))}
		var p problem
		if json.Unmarshal(bodyBytes, &p) == nil {
			if p.Detail != "" {
				apiErr.Message = p.Detail
			} else if p.Title != "" {
				apiErr.Message = p.Title
			}
		}
		c.logger.Debug().Int("status_code", resp.StatusCode).Str("path", path).Str("error", apiErr.Message).Msg("Course API returned error")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func coursePath(courseID string, parts ...string) string {
	p := "/courses/" + url.PathEscape(courseID)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// CreateCourse sends course as the payload. Ids in it are only kept for modules and
// lessons that have one.
func (c *Client) CreateCourse(ctx context.Context, course *model.Course) (*model.Course, error) {
	payload := course.Clone()
	// status is a closed set on the server, an unset one would be rejected
	if payload.Status == "" {
		payload.Status = model.StatusDraft
	}
	var out courseResponse
	if err := c.do(ctx, http.MethodPost, "/courses", 0, payload, &out); err != nil {
		return nil, err
	}
	return &out.Course, nil
}

func (c *Client) ListCourses(ctx context.Context) ([]model.CourseSummary, error) {
	var out []model.CourseSummary
	if err := c.do(ctx, http.MethodGet, "/courses", 0, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var out model.Course
	if err := c.do(ctx, http.MethodGet, coursePath(courseID), 0, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TogglePublish(ctx context.Context, courseID string, version int64) (*model.Course, error) {
	var out courseResponse
	if err := c.do(ctx, http.MethodPost, coursePath(courseID, "toggle-publish"), version, nil, &out); err != nil {
		return nil, err
	}
	return &out.Course, nil
}

func (c *Client) AddModule(ctx context.Context, courseID string, m *model.Module, version int64) (*model.Course, *model.Module, error) {
	var out moduleResponse
	if err := c.do(ctx, http.MethodPost, coursePath(courseID, "modules"), version, m, &out); err != nil {
		return nil, nil, err
	}
	return &out.Course, &out.Module, nil
}

func (c *Client) UpdateModule(ctx context.Context, courseID, moduleID string, patch model.ModulePatch, version int64) (*model.Course, error) {
	var out courseResponse
	if err := c.do(ctx, http.MethodPatch, coursePath(courseID, "modules", moduleID), version, modulePatchBody(patch), &out); err != nil {
		return nil, err
	}
	return &out.Course, nil
}

func (c *Client) DeleteModule(ctx context.Context, courseID, moduleID string, version int64) (*model.Course, error) {
	var out courseResponse
	if err := c.do(ctx, http.MethodDelete, coursePath(courseID, "modules", moduleID), version, nil, &out); err != nil {
		return nil, err
	}
	return &out.Course, nil
}

func (c *Client) AddLesson(ctx context.Context, courseID, moduleID string, l *model.Lesson, version int64) (*model.Course, *model.Lesson, error) {
	var out lessonResponse
	if err := c.do(ctx, http.MethodPost, coursePath(courseID, "modules", moduleID, "lessons"), version, l, &out); err != nil {
		return nil, nil, err
	}
	return &out.Course, &out.Lesson, nil
}

func (c *Client) UpdateLesson(ctx context.Context, courseID, moduleID, lessonID string, patch model.LessonPatch, version int64) (*model.Course, error) {
	var out courseResponse
	path := coursePath(courseID, "modules", moduleID, "lessons", lessonID)
	if err := c.do(ctx, http.MethodPatch, path, version, lessonPatchBody(patch), &out); err != nil {
		return nil, err
	}
	return &out.Course, nil
}

func (c *Client) DeleteLesson(ctx context.Context, courseID, moduleID, lessonID string, version int64) (*model.Course, error) {
	var out courseResponse
	if err := c.do(ctx, http.MethodDelete, coursePath(courseID, "modules", moduleID, "lessons", lessonID), version, nil, &out); err != nil {
		return nil, err
	}
	return &out.Course, nil
}

// GenerateCourse asks the server to generate and store a course. A course that was
// generated but not stored comes back with Persisted false and no error.
func (c *Client) GenerateCourse(ctx context.Context, text string) (*GeneratedCourse, error) {
	var out GeneratedCourse
	if err := c.do(ctx, http.MethodPost, "/generate/course", 0, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateModule(ctx context.Context, courseID, text string) (*GeneratedModule, error) {
	var out GeneratedModule
	if err := c.do(ctx, http.MethodPost, coursePath(courseID, "generate-module"), 0, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateLesson(ctx context.Context, title string) (*model.Lesson, error) {
	var out model.Lesson
	if err := c.do(ctx, http.MethodPost, "/generate/lesson", 0, map[string]string{"title": title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateContent(ctx context.Context, title string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	if err := c.do(ctx, http.MethodPost, "/generate/content", 0, map[string]string{"title": title}, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

func (c *Client) GenerateOutcomes(ctx context.Context, title string) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodPost, "/generate/outcomes", 0, map[string]string{"title": title}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RegenerateLessonContent(ctx context.Context, courseID, moduleID, lessonID string, version int64) (*RegeneratedContent, error) {
	var out RegeneratedContent
	path := coursePath(courseID, "modules", moduleID, "lessons", lessonID, "regenerate-content")
	if err := c.do(ctx, http.MethodPost, path, version, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func modulePatchBody(p model.ModulePatch) map[string]any {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	return body
}

// lessonPatchBody sends only the fields the patch sets; an explicitly empty list is sent
// so that the server clears it
func lessonPatchBody(p model.LessonPatch) map[string]any {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Type != nil {
		body["type"] = string(*p.Type)
	}
	if p.Content != nil {
		body["content"] = *p.Content
	}
	if p.HasLearningOutcomes {
		outcomes := p.LearningOutcomes
		if outcomes == nil {
			outcomes = []string{}
		}
		body["learningOutcomes"] = outcomes
	}
	if p.HasAdditionalResources {
		resources := p.AdditionalResources
		if resources == nil {
			resources = []model.Resource{}
		}
		body["additionalResources"] = resources
	}
	return body
}
