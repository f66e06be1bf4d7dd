package mongo

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tamy417/study-partner-server/internal/model"
	"github.com/tamy417/study-partner-server/internal/repository"
)

var _ repository.RequestRepository = (*RequestStore)(nil)

// RequestStore performs request collection operations.
type RequestStore struct {
	coll *mongo.Collection
}

func NewRequestStore(coll *mongo.Collection) *RequestStore {
	return &RequestStore{coll: coll}
}

func (s *RequestStore) Insert(ctx context.Context, req *model.Request) (*model.InsertResult, error) {
	res, err := s.coll.InsertOne(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("mongo: inserting request: %w", err)
	}

	ack, oid, err := toInsertResult(res)
	if err != nil {
		return nil, err
	}
	req.ID = oid
	return ack, nil
}

func (s *RequestStore) FindByUserEmail(ctx context.Context, email string) ([]model.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.D{{Key: "userEmail", Value: email}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: finding requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []model.Request{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("mongo: decoding requests: %w", err)
	}
	return requests, nil
}

// Merge $sets only the fields present in patch; the rest of the document is
// preserved.
//
// Unlike PartnerStore.Replace, the $set document is built from the patch's
// present keys, so {"status":"accepted"} becomes {"$set":{"status":"accepted"}}
// and nothing else is written. Keys are sorted so the update document is
// deterministic, which keeps driver logs and tests stable.
func (s *RequestStore) Merge(ctx context.Context, id bson.ObjectID, patch model.RequestPatch) (*model.UpdateResult, error) {
	fields := patch.Fields()

	set := make(bson.D, 0, len(fields))
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		set = append(set, bson.E{Key: key, Value: fields[key]})
	}

	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return nil, fmt.Errorf("mongo: updating request %s: %w", id.Hex(), err)
	}
	return toUpdateResult(res), nil
}

func (s *RequestStore) Delete(ctx context.Context, id bson.ObjectID) (*model.DeleteResult, error) {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("mongo: deleting request %s: %w", id.Hex(), err)
	}
	return toDeleteResult(res), nil
}
