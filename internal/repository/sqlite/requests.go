package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tamy417/study-partner-server/internal/model"
	"github.com/tamy417/study-partner-server/internal/repository"
)

var _ repository.RequestRepository = (*RequestStore)(nil)

// requestColumns maps RequestPatch keys to columns.
var requestColumns = map[string]string{
	"partnerId":    "partner_id",
	"partnerName":  "partner_name",
	"partnerEmail": "partner_email",
	"profileImage": "profile_image",
	"subject":      "subject",
	"studyMode":    "study_mode",
	"message":      "message",
	"status":       "status",
	"userEmail":    "user_email",
}

// RequestStore performs request table operations.
type RequestStore struct {
	conn *sql.DB
}

func (s *RequestStore) Insert(ctx context.Context, req *model.Request) (*model.InsertResult, error) {
	req.ID = bson.NewObjectID()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO requests (id, partner_id, partner_name, partner_email, profile_image,
			subject, study_mode, message, status, user_email, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID.Hex(),
		req.PartnerID,
		req.PartnerName,
		req.PartnerEmail,
		req.ProfileImage,
		req.Subject,
		req.StudyMode,
		req.Message,
		req.Status,
		req.UserEmail,
		req.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting request: %w", err)
	}

	return &model.InsertResult{Acknowledged: true, InsertedID: req.ID.Hex()}, nil
}

func (s *RequestStore) FindByUserEmail(ctx context.Context, email string) ([]model.Request, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, partner_id, partner_name, partner_email, profile_image,
			subject, study_mode, message, status, user_email, created_at
		 FROM requests
		 WHERE user_email = ?
		 ORDER BY created_at DESC, rowid DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing requests: %w", err)
	}
	defer rows.Close()

	requests := []model.Request{}
	for rows.Next() {
		var (
			r  model.Request
			id string
		)
		if err := rows.Scan(
			&id, &r.PartnerID, &r.PartnerName, &r.PartnerEmail, &r.ProfileImage,
			&r.Subject, &r.StudyMode, &r.Message, &r.Status, &r.UserEmail, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning request row: %w", err)
		}
		if r.ID, err = bson.ObjectIDFromHex(id); err != nil {
			return nil, fmt.Errorf("sqlite: stored request id %q: %w", id, err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating requests: %w", err)
	}

	return requests, nil
}

// Merge writes only the columns present in patch.
func (s *RequestStore) Merge(ctx context.Context, id bson.ObjectID, patch model.RequestPatch) (*model.UpdateResult, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("sqlite: updating request %s: empty patch", id.Hex())
	}

	keys := slices.Sorted(maps.Keys(fields))
	columns := make([]string, len(keys))
	values := make([]any, len(keys))
	for i, key := range keys {
		columns[i] = requestColumns[key]
		values[i] = fields[key]
	}

	return setColumns(ctx, s.conn, "requests", id.Hex(), columns, values)
}

func (s *RequestStore) Delete(ctx context.Context, id bson.ObjectID) (*model.DeleteResult, error) {
	return deleteByID(ctx, s.conn, "requests", id.Hex())
}
