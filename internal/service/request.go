package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/model"
	"github.com/tamy417/study-partner-server/internal/repository"
)

// RequestService handles study requests between users and partners.
type RequestService struct {
	repo   repository.RequestRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewRequestService(repo repository.RequestRepository, logger *slog.Logger) *RequestService {
	return &RequestService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create stores a request. partnerId is not checked against the partners
// collection.
func (s *RequestService) Create(ctx context.Context, req model.Request) (*model.InsertResult, error) {
	req.PartnerID = strings.TrimSpace(req.PartnerID)
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	if req.PartnerID == "" {
		return nil, apperror.InvalidSchema("partnerId", "partnerId is required")
	}
	if req.UserEmail == "" {
		return nil, apperror.InvalidSchema("userEmail", "userEmail is required")
	}

	req.ID = bson.NilObjectID
	req.CreatedAt = s.now().UTC()

	ack, err := s.repo.Insert(ctx, &req)
	if err != nil {
		s.logger.Error("failed to create request",
			slog.String("partner_id", req.PartnerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating request: %w", err)
	}

	s.logger.Info("request created",
		slog.String("id", ack.InsertedID),
		slog.String("partner_id", req.PartnerID),
	)
	return ack, nil
}

// List returns the requests made by email (matched against userEmail).
func (s *RequestService) List(ctx context.Context, email string) ([]model.Request, error) {
	email, err := requireParam("email", email)
	if err != nil {
		return nil, err
	}

	requests, err := s.repo.FindByUserEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	return requests, nil
}

// Update merges patch into the stored request; absent fields are kept.
// Any store failure is reported as apperror.ErrUpdateFailed with a fixed
// message.
func (s *RequestService) Update(ctx context.Context, id string, patch model.RequestPatch) (*model.UpdateResult, error) {
	oid, err := parseID("request", id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperror.InvalidSchema("", "request update needs at least one field")
	}
	if patch.PartnerID != nil && strings.TrimSpace(*patch.PartnerID) == "" {
		return nil, apperror.InvalidSchema("partnerId", "partnerId cannot be blank")
	}
	if patch.UserEmail != nil && strings.TrimSpace(*patch.UserEmail) == "" {
		return nil, apperror.InvalidSchema("userEmail", "userEmail cannot be blank")
	}

	res, err := s.repo.Merge(ctx, oid, patch)
	if err != nil {
		s.logger.Error("failed to update request",
			slog.String("id", oid.Hex()),
			slog.String("error", err.Error()),
		)
		return nil, apperror.UpdateFailed("request", err)
	}

	s.logger.Info("request updated",
		slog.String("id", oid.Hex()),
		slog.Int64("matched", res.MatchedCount),
		slog.Int64("modified", res.ModifiedCount),
	)
	return res, nil
}

func (s *RequestService) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	oid, err := parseID("request", id)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("deleting request: %w", err)
	}

	s.logger.Info("request deleted",
		slog.String("id", oid.Hex()),
		slog.Int64("deleted", res.DeletedCount),
	)
	return res, nil
}
