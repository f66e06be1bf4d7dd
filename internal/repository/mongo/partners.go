package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/model"
	"github.com/tamy417/study-partner-server/internal/repository"
)

var _ repository.PartnerRepository = (*PartnerStore)(nil)

// PartnerStore performs partner collection operations.
type PartnerStore struct {
	coll *mongo.Collection
}

// NewPartnerStore returns a PartnerStore using the provided collection.
func NewPartnerStore(coll *mongo.Collection) *PartnerStore {
	return &PartnerStore{coll: coll}
}

// Insert adds the partner and sets partner.ID to the generated ObjectID.
func (s *PartnerStore) Insert(ctx context.Context, partner *model.Partner) (*model.InsertResult, error) {
	res, err := s.coll.InsertOne(ctx, partner)
	if err != nil {
		return nil, fmt.Errorf("mongo: inserting partner: %w", err)
	}

	ack, oid, err := toInsertResult(res)
	if err != nil {
		return nil, err
	}
	partner.ID = oid
	return ack, nil
}

func (s *PartnerStore) Find(ctx context.Context, q repository.PartnerQuery) ([]model.Partner, error) {
	spec := compilePartnerQuery(q)

	cursor, err := s.coll.Find(ctx, spec.filter, spec.findOptions())
	if err != nil {
		return nil, fmt.Errorf("mongo: finding partners: %w", err)
	}
	defer cursor.Close(ctx)

	partners := []model.Partner{}
	if err := cursor.All(ctx, &partners); err != nil {
		return nil, fmt.Errorf("mongo: decoding partners: %w", err)
	}
	return partners, nil
}

func (s *PartnerStore) FindByID(ctx context.Context, id bson.ObjectID) (*model.Partner, error) {
	var partner model.Partner

	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&partner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("partner", id.Hex())
		}
		return nil, fmt.Errorf("mongo: finding partner %s: %w", id.Hex(), err)
	}

	return &partner, nil
}

// Replace overwrites the nine PartnerFields with $set.
//
// $set vs REPLACING THE DOCUMENT:
// ReplaceOne would swap in a whole new document and wipe partnerCount and
// createdAt. $set only writes the keys it is given, and PartnerFields
// marshals to exactly the nine editable keys, so:
//
//	{"$set": {"name": ..., "subject": ..., ..., "email": ...}}
//
// leaves _id, partnerCount and createdAt alone. Every one of the nine keys is
// written, so a zero value in fields clears the stored one (full replace of
// the editable part, not a merge).
func (s *PartnerStore) Replace(ctx context.Context, id bson.ObjectID, fields model.PartnerFields) (*model.UpdateResult, error) {
	update := bson.D{{Key: "$set", Value: fields}}

	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return nil, fmt.Errorf("mongo: replacing partner %s: %w", id.Hex(), err)
	}
	return toUpdateResult(res), nil
}

// IncrementPartnerCount bumps partnerCount by one.
//
// WHY $inc AND NOT READ-MODIFY-WRITE?
// Reading the count, adding one and writing it back loses updates when two
// requests interleave: both read 4, both write 5. $inc is applied by the
// server inside the single-document write, so N concurrent calls always add
// exactly N. No transaction or lock is needed for a one-document update.
func (s *PartnerStore) IncrementPartnerCount(ctx context.Context, id bson.ObjectID) (*model.UpdateResult, error) {
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "partnerCount", Value: 1}}}}

	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return nil, fmt.Errorf("mongo: incrementing partner %s: %w", id.Hex(), err)
	}
	return toUpdateResult(res), nil
}

func (s *PartnerStore) Delete(ctx context.Context, id bson.ObjectID) (*model.DeleteResult, error) {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("mongo: deleting partner %s: %w", id.Hex(), err)
	}
	return toDeleteResult(res), nil
}
