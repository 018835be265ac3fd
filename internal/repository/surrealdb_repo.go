package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"coursegpt/internal/model"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

const surrealCoursesTable = "courses"

// surrealCourse is the stored record. The course tree is kept as JSON text so that it
// round-trips through the same encoding the API uses.
type surrealCourse struct {
	CourseID  string `json:"course_id"`
	Version   int64  `json:"version"`
	CreatedNS int64  `json:"created_ns"`
	Document  string `json:"document"`
}

func (s surrealCourse) decode() (*model.Course, error) {
	var c model.Course
	if err := json.Unmarshal([]byte(s.Document), &c); err != nil {
		return nil, fmt.Errorf("decoding course %s: %w", s.CourseID, err)
	}
	c.Version = s.Version
	return &c, nil
}

type surrealRepo struct {
	db *surrealdb.DB
}

// NewSurrealRepo connects to SurrealDB and returns a CourseRepository keeping one record per
// course in the courses table.
func NewSurrealRepo(ctx context.Context, endpoint, namespace, database, username, password string) (CourseRepository, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &surrealRepo{db: db}, nil
}

func recordID(id string) models.RecordID {
	return models.NewRecordID(surrealCoursesTable, id)
}

func queryCourses(ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) ([]surrealCourse, error) {
	res, err := surrealdb.Query[[]surrealCourse](ctx, db, sql, vars)
	if err != nil {
		return nil, err
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	first := (*res)[0]
	if first.Status != "OK" {
		return nil, fmt.Errorf("query returned status %s", first.Status)
	}
	return first.Result, nil
}

func (r *surrealRepo) Create(ctx context.Context, c *model.Course) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return persistErr("create", fmt.Errorf("encoding course %s: %w", c.ID, err))
	}
	_, err = queryCourses(ctx, r.db, "CREATE $rid CONTENT $record", map[string]any{
		"rid": recordID(c.ID),
		"record": surrealCourse{
			CourseID:  c.ID,
			Version:   c.Version,
			CreatedNS: c.CreatedAt.UnixNano(),
			Document:  string(doc),
		},
	})
	if err != nil {
		return persistErr("create", fmt.Errorf("creating course %s: %w", c.ID, err))
	}
	return nil
}

func (r *surrealRepo) Get(ctx context.Context, id string) (*model.Course, error) {
	rows, err := queryCourses(ctx, r.db, "SELECT course_id, version, created_ns, document FROM $rid", map[string]any{
		"rid": recordID(id),
	})
	if err != nil {
		return nil, persistErr("get", fmt.Errorf("selecting course %s: %w", id, err))
	}
	if len(rows) == 0 {
		return nil, ErrCourseNotFound
	}
	c, err := rows[0].decode()
	if err != nil {
		return nil, persistErr("get", err)
	}
	return c, nil
}

func (r *surrealRepo) List(ctx context.Context) ([]model.Course, error) {
	rows, err := queryCourses(ctx, r.db, "SELECT course_id, version, created_ns, document FROM type::table($tb) ORDER BY created_ns ASC", map[string]any{
		"tb": surrealCoursesTable,
	})
	if err != nil {
		return nil, persistErr("list", fmt.Errorf("selecting courses: %w", err))
	}
	courses := make([]model.Course, 0, len(rows))
	for _, row := range rows {
		c, err := row.decode()
		if err != nil {
			return nil, persistErr("list", err)
		}
		courses = append(courses, *c)
	}
	return courses, nil
}

func (r *surrealRepo) Save(ctx context.Context, c *model.Course, expectedVersion int64) error {
	next := *c
	stamp(&next, expectedVersion)
	doc, err := json.Marshal(&next)
	if err != nil {
		return persistErr("save", fmt.Errorf("encoding course %s: %w", c.ID, err))
	}

	rows, err := queryCourses(ctx, r.db, "UPDATE $rid SET version = $next, document = $doc WHERE version = $expected RETURN AFTER", map[string]any{
		"rid":      recordID(c.ID),
		"next":     next.Version,
		"doc":      string(doc),
		"expected": expectedVersion,
	})
	if err != nil {
		return persistErr("save", fmt.Errorf("updating course %s: %w", c.ID, err))
	}
	if len(rows) == 0 {
		existing, err := queryCourses(ctx, r.db, "SELECT course_id, version FROM $rid", map[string]any{
			"rid": recordID(c.ID),
		})
		if err != nil {
			return persistErr("save", fmt.Errorf("checking course %s: %w", c.ID, err))
		}
		if len(existing) == 0 {
			return ErrCourseNotFound
		}
		return ErrVersionConflict
	}

	c.Version = next.Version
	c.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *surrealRepo) Close(ctx context.Context) error {
	return r.db.Close(ctx)
}
