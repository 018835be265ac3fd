package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coursegpt/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const coursesTableDDL = `
	CREATE TABLE IF NOT EXISTS courses (
		id         TEXT PRIMARY KEY,
		version    BIGINT NOT NULL,
		document   JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)
`

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo creates a CourseRepository keeping one JSONB document per course
func NewPostgresRepo(pool *pgxpool.Pool) CourseRepository {
	return &postgresRepo{pool: pool}
}

// MigratePostgres creates the courses table if it does not exist
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, coursesTableDDL); err != nil {
		return fmt.Errorf("creating courses table: %w", err)
	}
	return nil
}

func (r *postgresRepo) Create(ctx context.Context, c *model.Course) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return persistErr("create", fmt.Errorf("encoding course %s: %w", c.ID, err))
	}
	query := `
		INSERT INTO courses (id, version, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query, c.ID, c.Version, doc, c.CreatedAt, c.UpdatedAt); err != nil {
		return persistErr("create", fmt.Errorf("inserting course %s: %w", c.ID, err))
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*model.Course, error) {
	query := `
		SELECT document, version
		FROM courses
		WHERE id = $1
	`
	var (
		doc     []byte
		version int64
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(&doc, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, persistErr("get", fmt.Errorf("querying course %s: %w", id, err))
	}
	var c model.Course
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, persistErr("get", fmt.Errorf("decoding course %s: %w", id, err))
	}
	c.Version = version
	return &c, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]model.Course, error) {
	query := `
		SELECT document, version
		FROM courses
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, persistErr("list", fmt.Errorf("querying courses: %w", err))
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var (
			doc     []byte
			version int64
			c       model.Course
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, persistErr("list", fmt.Errorf("scanning course row: %w", err))
		}
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, persistErr("list", fmt.Errorf("decoding course row: %w", err))
		}
		c.Version = version
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list", fmt.Errorf("iterating course rows: %w", err))
	}
	return courses, nil
}

func (r *postgresRepo) Save(ctx context.Context, c *model.Course, expectedVersion int64) error {
	next := *c
	stamp(&next, expectedVersion)
	doc, err := json.Marshal(&next)
	if err != nil {
		return persistErr("save", fmt.Errorf("encoding course %s: %w", c.ID, err))
	}

	query := `
		UPDATE courses
		SET version = $3, document = $4, updated_at = $5
		WHERE id = $1 AND version = $2
	`
	tag, err := r.pool.Exec(ctx, query, c.ID, expectedVersion, next.Version, doc, next.UpdatedAt)
	if err != nil {
		return persistErr("save", fmt.Errorf("updating course %s: %w", c.ID, err))
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, c.ID).Scan(&exists); err != nil {
			return persistErr("save", fmt.Errorf("checking course %s: %w", c.ID, err))
		}
		if !exists {
			return ErrCourseNotFound
		}
		return ErrVersionConflict
	}

	c.Version = next.Version
	c.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *postgresRepo) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}
