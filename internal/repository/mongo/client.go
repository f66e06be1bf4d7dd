// Package mongo implements the repository interfaces on MongoDB.
//
// One Client is created at startup and shared; the underlying driver client is
// safe for concurrent use and manages its own connection pool.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/model"
	"github.com/tamy417/study-partner-server/internal/repository"
)

const (
	partnersCollection = "partners"
	requestsCollection = "requests"
)

var _ repository.Store = (*Client)(nil)

// Client wraps mongo.Client and exposes the two collection stores.
type Client struct {
	client   *mongo.Client
	db       *mongo.Database
	partners *PartnerStore
	requests *RequestStore
}

// New connects to MongoDB, verifies the connection with a ping and returns a
// Client bound to dbName. A failed connect or ping is reported as
// apperror.ErrStoreUnavailable.
func New(ctx context.Context, uri, dbName string) (*Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, apperror.StoreUnavailable(fmt.Errorf("mongo: connecting: %w", err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperror.StoreUnavailable(fmt.Errorf("mongo: pinging: %w", err))
	}

	db := client.Database(dbName)

	return &Client{
		client:   client,
		db:       db,
		partners: NewPartnerStore(db.Collection(partnersCollection)),
		requests: NewRequestStore(db.Collection(requestsCollection)),
	}, nil
}

func (c *Client) Partners() repository.PartnerRepository { return c.partners }

func (c *Client) Requests() repository.RequestRepository { return c.requests }

// Ping checks the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: pinging: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes backing the list queries:
// partners by rating (top partners) and email (connections), requests by
// userEmail. Creating an index that already exists is a no-op.
func (c *Client) CreateIndexes(ctx context.Context) error {
	partnerIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "rating", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}
	if _, err := c.db.Collection(partnersCollection).Indexes().CreateMany(ctx, partnerIndexes); err != nil {
		return fmt.Errorf("mongo: creating partner indexes: %w", err)
	}

	requestIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "createdAt", Value: -1}},
	}
	if _, err := c.db.Collection(requestsCollection).Indexes().CreateOne(ctx, requestIndex); err != nil {
		return fmt.Errorf("mongo: creating request index: %w", err)
	}

	return nil
}

// drop removes both collections. Used by integration tests.
func (c *Client) drop(ctx context.Context) error {
	if err := c.db.Collection(partnersCollection).Drop(ctx); err != nil {
		return err
	}
	return c.db.Collection(requestsCollection).Drop(ctx)
}

func toUpdateResult(res *mongo.UpdateResult) *model.UpdateResult {
	out := &model.UpdateResult{
		Acknowledged:  res.Acknowledged,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if oid, ok := res.UpsertedID.(bson.ObjectID); ok {
		hex := oid.Hex()
		out.UpsertedID = &hex
	}
	return out
}

func toDeleteResult(res *mongo.DeleteResult) *model.DeleteResult {
	return &model.DeleteResult{
		Acknowledged: res.Acknowledged,
		DeletedCount: res.DeletedCount,
	}
}

func toInsertResult(res *mongo.InsertOneResult) (*model.InsertResult, bson.ObjectID, error) {
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, bson.NilObjectID, fmt.Errorf("mongo: unexpected inserted id type %T", res.InsertedID)
	}
	return &model.InsertResult{
		Acknowledged: res.Acknowledged,
		InsertedID:   oid.Hex(),
	}, oid, nil
}
