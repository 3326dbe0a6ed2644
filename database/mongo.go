package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/rpupo63/aether-backend/errs"
	"github.com/rpupo63/aether-backend/models"
)

// DefaultDatabaseName is used when neither the config nor the connection string
// names a database.
const DefaultDatabaseName = "aether"

type projectDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	models.Project `bson:",inline"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (d projectDocument) record() models.ProjectRecord {
	return models.ProjectRecord{
		ID:        d.ID.Hex(),
		Project:   d.Project,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoStore keeps projects in a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, db: db}
}

// ConnectMongo dials uri and pings the primary before returning. An empty
// dbName falls back to the database named in uri, then to DefaultDatabaseName.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if dbName == "" {
		cs, err := connstring.ParseAndValidate(uri)
		if err != nil {
			return nil, fmt.Errorf("parse mongo uri: %w", err)
		}
		dbName = cs.Database
	}
	if dbName == "" {
		dbName = DefaultDatabaseName
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return NewMongoStore(client, client.Database(dbName)), nil
}

// parseObjectID is the only place a client id is turned into an ObjectID.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q: %v", errs.ErrInvalidIdentifier, id, err)
	}
	return oid, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, project models.Project) (string, error) {
	now := time.Now().UTC()
	doc := projectDocument{
		Project:   project,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter Filter, limit int64) ([]models.ProjectRecord, error) {
	records := []models.ProjectRecord{}
	if limit <= 0 {
		return records, nil
	}

	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	cur, err := s.db.Collection(collection).Find(ctx, query, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc projectDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMalformedRecord, err)
		}
		records = append(records, doc.record())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *MongoStore) FindByID(ctx context.Context, collection string, id string) (*models.ProjectRecord, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc projectDocument
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	record := doc.record()
	return &record, nil
}

func (s *MongoStore) Name() string {
	return s.db.Name()
}

func (s *MongoStore) ListCollections(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.D{})
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
