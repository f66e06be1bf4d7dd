package service

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/model"
	"github.com/tamy417/study-partner-server/internal/repository"
)

// =========================================================================
// FAKES
// =========================================================================
//
// In-memory stand-ins for the repositories. They record what the service
// asked for (queries, call counts) so tests can check both the outcome and
// the store interaction, e.g. that a rejected request never reached the store.

var errStoreDown = errors.New("store down")

type fakePartnerRepo struct {
	partners map[bson.ObjectID]*model.Partner
	queries  []repository.PartnerQuery
	calls    int
	err      error // returned from every call when set
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{partners: make(map[bson.ObjectID]*model.Partner)}
}

func (f *fakePartnerRepo) Insert(_ context.Context, p *model.Partner) (*model.InsertResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p.ID = bson.NewObjectID()
	stored := *p
	f.partners[p.ID] = &stored
	return &model.InsertResult{Acknowledged: true, InsertedID: p.ID.Hex()}, nil
}

func (f *fakePartnerRepo) Find(_ context.Context, q repository.PartnerQuery) ([]model.Partner, error) {
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Partner{}
	for _, p := range f.partners {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePartnerRepo) FindByID(_ context.Context, id bson.ObjectID) (*model.Partner, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.partners[id]
	if !ok {
		return nil, apperror.NotFound("partner", id.Hex())
	}
	result := *p
	return &result, nil
}

func (f *fakePartnerRepo) Replace(_ context.Context, id bson.ObjectID, fields model.PartnerFields) (*model.UpdateResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.partners[id]
	if !ok {
		return &model.UpdateResult{Acknowledged: true}, nil
	}
	modified := int64(0)
	if p.PartnerFields != fields {
		modified = 1
	}
	p.PartnerFields = fields
	return &model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
}

func (f *fakePartnerRepo) IncrementPartnerCount(_ context.Context, id bson.ObjectID) (*model.UpdateResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.partners[id]
	if !ok {
		return &model.UpdateResult{Acknowledged: true}, nil
	}
	p.PartnerCount++
	return &model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakePartnerRepo) Delete(_ context.Context, id bson.ObjectID) (*model.DeleteResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.partners[id]; !ok {
		return &model.DeleteResult{Acknowledged: true}, nil
	}
	delete(f.partners, id)
	return &model.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

type fakeRequestRepo struct {
	requests map[bson.ObjectID]*model.Request
	emails   []string
	patches  []model.RequestPatch
	calls    int
	err      error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[bson.ObjectID]*model.Request)}
}

func (f *fakeRequestRepo) Insert(_ context.Context, r *model.Request) (*model.InsertResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r.ID = bson.NewObjectID()
	stored := *r
	f.requests[r.ID] = &stored
	return &model.InsertResult{Acknowledged: true, InsertedID: r.ID.Hex()}, nil
}

func (f *fakeRequestRepo) FindByUserEmail(_ context.Context, email string) ([]model.Request, error) {
	f.calls++
	f.emails = append(f.emails, email)
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Request{}
	for _, r := range f.requests {
		if r.UserEmail == email {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) Merge(_ context.Context, id bson.ObjectID, patch model.RequestPatch) (*model.UpdateResult, error) {
	f.calls++
	f.patches = append(f.patches, patch)
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.requests[id]; !ok {
		return &model.UpdateResult{Acknowledged: true}, nil
	}
	return &model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeRequestRepo) Delete(_ context.Context, id bson.ObjectID) (*model.DeleteResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.requests[id]; !ok {
		return &model.DeleteResult{Acknowledged: true}, nil
	}
	delete(f.requests, id)
	return &model.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
