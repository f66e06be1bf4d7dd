package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/model"
	"github.com/tamy417/study-partner-server/internal/repository"
)

// TopPartnersLimit is how many partners the top-rated listing returns.
const TopPartnersLimit = 6

// PartnerService handles partner profiles.
//
// WHAT THE SERVICE OWNS:
// The handler only parses HTTP and the repository only talks to the store.
// Everything in between lives here:
//   - turning a hex id into an ObjectID (malformed → invalid_identifier)
//   - rejecting blank required input before the store is touched
//   - building the PartnerQuery (filter, sort keys, limit) for each listing
//   - stamping server-owned fields (createdAt, partnerCount)
//
// now is a field rather than a direct time.Now call so tests can pin
// createdAt to a fixed instant.
type PartnerService struct {
	repo   repository.PartnerRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewPartnerService creates a PartnerService on top of any PartnerRepository
// (Mongo, SQLite, or a fake in tests).
func NewPartnerService(repo repository.PartnerRepository, logger *slog.Logger) *PartnerService {
	return &PartnerService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create stores a new partner. The server owns createdAt and partnerCount:
// whatever the caller sent for them is discarded, createdAt is stamped now and
// partnerCount starts at 0.
func (s *PartnerService) Create(ctx context.Context, fields model.PartnerFields) (*model.InsertResult, error) {
	fields = trimFields(fields)
	if fields.Name == "" {
		return nil, apperror.InvalidSchema("name", "partner name is required")
	}
	if fields.Email == "" {
		return nil, apperror.InvalidSchema("email", "partner email is required")
	}

	partner := &model.Partner{
		PartnerFields: fields,
		PartnerCount:  0,
		CreatedAt:     s.now().UTC(),
	}

	ack, err := s.repo.Insert(ctx, partner)
	if err != nil {
		s.logger.Error("failed to create partner",
			slog.String("email", fields.Email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating partner: %w", err)
	}

	s.logger.Info("partner created",
		slog.String("id", ack.InsertedID),
		slog.String("email", fields.Email),
	)
	return ack, nil
}

// Top returns the highest rated partners, best first.
//
// QUERY CONSTRUCTION:
// The service describes the query; each store compiles it:
//
//	PartnerQuery{Sort: [{rating, Descending}], Limit: 6}
//	  Mongo:  Find({}, sort {rating: -1}, limit 6)
//	  SQLite: SELECT ... ORDER BY rating DESC, rowid ASC LIMIT 6
func (s *PartnerService) Top(ctx context.Context) ([]model.Partner, error) {
	partners, err := s.repo.Find(ctx, repository.PartnerQuery{
		Sort:  []repository.SortKey{{Field: "rating", Order: repository.Descending}},
		Limit: TopPartnersLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing top partners: %w", err)
	}
	return partners, nil
}

// List returns every partner, optionally narrowed by a case-insensitive
// subject substring and ordered by experienceLevel.
//
// sort must be exactly "asc" or "desc" to take effect; any other value,
// including "ASC", leaves natural order.
func (s *PartnerService) List(ctx context.Context, subject, sort string) ([]model.Partner, error) {
	q := repository.PartnerQuery{
		SubjectContains: strings.TrimSpace(subject),
		Sort:            experienceSort(sort),
	}

	partners, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing partners: %w", err)
	}
	return partners, nil
}

func experienceSort(sort string) []repository.SortKey {
	switch sort {
	case "asc":
		return []repository.SortKey{{Field: "experienceLevel", Order: repository.Ascending}}
	case "desc":
		return []repository.SortKey{{Field: "experienceLevel", Order: repository.Descending}}
	default:
		return nil
	}
}

// Get returns one partner. A well-formed id with no document yields
// apperror.ErrNotFound.
func (s *PartnerService) Get(ctx context.Context, id string) (*model.Partner, error) {
	oid, err := parseID("partner", id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, oid)
}

// Connections lists the partner profiles owned by email (exact match).
//
// A missing email is rejected here, before any store call: an empty filter
// would otherwise match every partner and leak the whole collection.
func (s *PartnerService) Connections(ctx context.Context, email string) ([]model.Partner, error) {
	email, err := requireParam("email", email)
	if err != nil {
		return nil, err
	}

	partners, err := s.repo.Find(ctx, repository.PartnerQuery{Email: email})
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}
	return partners, nil
}

// Replace overwrites all nine editable fields. Fields missing from the
// payload arrive here as zero values and are written as such.
// A zero MatchedCount is returned as-is, not as an error.
func (s *PartnerService) Replace(ctx context.Context, id string, fields model.PartnerFields) (*model.UpdateResult, error) {
	oid, err := parseID("partner", id)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Replace(ctx, oid, trimFields(fields))
	if err != nil {
		s.logger.Error("failed to replace partner",
			slog.String("id", oid.Hex()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("replacing partner: %w", err)
	}

	s.logger.Info("partner replaced",
		slog.String("id", oid.Hex()),
		slog.Int64("matched", res.MatchedCount),
		slog.Int64("modified", res.ModifiedCount),
	)
	return res, nil
}

// SendRequest bumps the partner's partnerCount by one using the store's
// atomic increment.
func (s *PartnerService) SendRequest(ctx context.Context, id string) (*model.UpdateResult, error) {
	oid, err := parseID("partner", id)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.IncrementPartnerCount(ctx, oid)
	if err != nil {
		s.logger.Error("failed to increment partner count",
			slog.String("id", oid.Hex()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return res, nil
}

// Delete removes a partner. Requests referencing it are left alone.
func (s *PartnerService) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	oid, err := parseID("partner", id)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("deleting partner: %w", err)
	}

	s.logger.Info("partner deleted",
		slog.String("id", oid.Hex()),
		slog.Int64("deleted", res.DeletedCount),
	)
	return res, nil
}

func trimFields(f model.PartnerFields) model.PartnerFields {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Subject = strings.TrimSpace(f.Subject)
	return f
}
