// Package repository declares the storage contracts the service layer depends on.
// Implementations live in the mongo and sqlite subpackages.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tamy417/study-partner-server/internal/model"
)

// SortOrder is the direction of a single sort key.
type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

// SortKey orders results by one partner field.
// Field uses the stored (camelCase) attribute name, e.g. "rating".
type SortKey struct {
	Field string
	Order SortOrder
}

// PartnerQuery describes a partner lookup. Zero values mean "no constraint".
//
//   - SubjectContains: case-insensitive substring of subject, matched literally
//   - Email: exact match on email
//   - Sort: applied in order; empty means natural store order
//   - Limit: maximum results; 0 means unlimited
type PartnerQuery struct {
	SubjectContains string
	Email           string
	Sort            []SortKey
	Limit           int64
}

type PartnerRepository interface {
	Insert(ctx context.Context, partner *model.Partner) (*model.InsertResult, error)
	Find(ctx context.Context, q PartnerQuery) ([]model.Partner, error)
	// FindByID returns apperror.ErrNotFound when no document matches.
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Partner, error)
	Replace(ctx context.Context, id bson.ObjectID, fields model.PartnerFields) (*model.UpdateResult, error)
	IncrementPartnerCount(ctx context.Context, id bson.ObjectID) (*model.UpdateResult, error)
	Delete(ctx context.Context, id bson.ObjectID) (*model.DeleteResult, error)
}

type RequestRepository interface {
	Insert(ctx context.Context, req *model.Request) (*model.InsertResult, error)
	// FindByUserEmail returns requests newest first.
	FindByUserEmail(ctx context.Context, email string) ([]model.Request, error)
	Merge(ctx context.Context, id bson.ObjectID, patch model.RequestPatch) (*model.UpdateResult, error)
	Delete(ctx context.Context, id bson.ObjectID) (*model.DeleteResult, error)
}

// Store is a connected backend. It is opened once at startup and shared by
// every request.
type Store interface {
	Partners() PartnerRepository
	Requests() RequestRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
