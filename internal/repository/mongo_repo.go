package repository

import (
	"context"
	"errors"
	"fmt"

	"coursegpt/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCoursesCollection = "courses"

type mongoRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoRepo connects to MongoDB and returns a CourseRepository keeping one document per
// course, keyed by the course id.
func NewMongoRepo(ctx context.Context, uri, database string) (CourseRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &mongoRepo{
		client: client,
		coll:   client.Database(database).Collection(mongoCoursesCollection),
	}, nil
}

func (r *mongoRepo) Create(ctx context.Context, c *model.Course) error {
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return persistErr("create", errDuplicateID(c.ID))
		}
		return persistErr("create", fmt.Errorf("inserting course %s: %w", c.ID, err))
	}
	return nil
}

func (r *mongoRepo) Get(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourseNotFound
		}
		return nil, persistErr("get", fmt.Errorf("finding course %s: %w", id, err))
	}
	return &c, nil
}

func (r *mongoRepo) List(ctx context.Context) ([]model.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, persistErr("list", fmt.Errorf("finding courses: %w", err))
	}
	courses := []model.Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, persistErr("list", fmt.Errorf("decoding courses: %w", err))
	}
	return courses, nil
}

func (r *mongoRepo) Save(ctx context.Context, c *model.Course, expectedVersion int64) error {
	next := *c
	stamp(&next, expectedVersion)

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID, "version": expectedVersion}, &next)
	if err != nil {
		return persistErr("save", fmt.Errorf("replacing course %s: %w", c.ID, err))
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": c.ID})
		if err != nil {
			return persistErr("save", fmt.Errorf("checking course %s: %w", c.ID, err))
		}
		if n == 0 {
			return ErrCourseNotFound
		}
		return ErrVersionConflict
	}

	c.Version = next.Version
	c.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *mongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
