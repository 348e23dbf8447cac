package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	apperrors "github.com/linguamesh/constellation/pkg/errors"
)

// Default connection timeout for the initial ping.
const mongoConnectTimeout = 5 * time.Second

// MongoProvider serves course scripts from a MongoDB collection, one document
// per course keyed by course_id. Used by the server deployment where course
// content is authored centrally.
type MongoProvider struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoProvider connects to MongoDB and verifies the connection with a
// ping before returning. Close the provider when done.
func NewMongoProvider(ctx context.Context, uri, database, collection string) (*MongoProvider, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoProvider{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Script implements Provider.
func (p *MongoProvider) Script(ctx context.Context, courseID string) (Script, error) {
	var s Script
	err := p.coll.FindOne(ctx, bson.M{"course_id": courseID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Script{}, apperrors.New(apperrors.ErrCodeCourseNotFound, "course %q not found", courseID)
	}
	if err != nil {
		return Script{}, fmt.Errorf("fetch script %s: %w", courseID, err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Close disconnects the underlying client.
func (p *MongoProvider) Close(ctx context.Context) error {
	return p.client.Disconnect(ctx)
}
