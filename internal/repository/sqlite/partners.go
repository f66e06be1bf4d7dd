package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/model"
	"github.com/tamy417/study-partner-server/internal/repository"
)

var _ repository.PartnerRepository = (*PartnerStore)(nil)

// partnerColumns maps stored attribute names to columns. Sort keys outside
// this map are rejected rather than interpolated into SQL.
var partnerColumns = map[string]string{
	"name":             "name",
	"profileImage":     "profile_image",
	"subject":          "subject",
	"studyMode":        "study_mode",
	"availabilityTime": "availability_time",
	"location":         "location",
	"experienceLevel":  "experience_level",
	"rating":           "rating",
	"email":            "email",
	"partnerCount":     "partner_count",
	"createdAt":        "created_at",
}

// The nine columns a full replace writes, in PartnerFields order.
var replaceColumns = []string{
	"name", "profile_image", "subject", "study_mode", "availability_time",
	"location", "experience_level", "rating", "email",
}

const partnerSelect = `SELECT id, name, profile_image, subject, study_mode, availability_time,
	location, experience_level, rating, email, partner_count, created_at
	FROM partners`

// PartnerStore performs partner table operations.
type PartnerStore struct {
	conn *sql.DB
}

// Insert generates an ObjectID, so ids look the same as Mongo's.
func (s *PartnerStore) Insert(ctx context.Context, partner *model.Partner) (*model.InsertResult, error) {
	partner.ID = bson.NewObjectID()

	args := []any{partner.ID.Hex()}
	args = append(args, fieldValues(partner.PartnerFields)...)
	args = append(args, partner.PartnerCount, partner.CreatedAt)

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO partners (id, name, profile_image, subject, study_mode, availability_time,
			location, experience_level, rating, email, partner_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting partner: %w", err)
	}

	return &model.InsertResult{Acknowledged: true, InsertedID: partner.ID.Hex()}, nil
}

func (s *PartnerStore) Find(ctx context.Context, q repository.PartnerQuery) ([]model.Partner, error) {
	query, args, err := compilePartnerQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing partners: %w", err)
	}
	defer rows.Close()

	partners := []model.Partner{}
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating partners: %w", err)
	}

	return partners, nil
}

func (s *PartnerStore) FindByID(ctx context.Context, id bson.ObjectID) (*model.Partner, error) {
	row := s.conn.QueryRowContext(ctx, partnerSelect+` WHERE id = ?`, id.Hex())

	p, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("partner", id.Hex())
		}
		return nil, err
	}
	return p, nil
}

func (s *PartnerStore) Replace(ctx context.Context, id bson.ObjectID, fields model.PartnerFields) (*model.UpdateResult, error) {
	return setColumns(ctx, s.conn, "partners", id.Hex(), replaceColumns, fieldValues(fields))
}

// IncrementPartnerCount is a single UPDATE, so concurrent calls cannot lose
// an increment.
func (s *PartnerStore) IncrementPartnerCount(ctx context.Context, id bson.ObjectID) (*model.UpdateResult, error) {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE partners SET partner_count = partner_count + 1 WHERE id = ?`, id.Hex())
	if err != nil {
		return nil, fmt.Errorf("sqlite: incrementing partner %s: %w", id.Hex(), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return &model.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func (s *PartnerStore) Delete(ctx context.Context, id bson.ObjectID) (*model.DeleteResult, error) {
	return deleteByID(ctx, s.conn, "partners", id.Hex())
}

// compilePartnerQuery builds the SELECT for a PartnerQuery.
//
// The subject match uses instr(fold(...)), a literal substring test, so
// LIKE wildcards in user input have no effect. fold is the Unicode-aware
// lowercase function registered in fold.go. rowid is the last sort key to
// keep insertion order for ties.
func compilePartnerQuery(q repository.PartnerQuery) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	if q.SubjectContains != "" {
		where = append(where, "instr(fold(subject), fold(?)) > 0")
		args = append(args, q.SubjectContains)
	}
	if q.Email != "" {
		where = append(where, "email = ?")
		args = append(args, q.Email)
	}

	var b strings.Builder
	b.WriteString(partnerSelect)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	order := make([]string, 0, len(q.Sort)+1)
	for _, key := range q.Sort {
		col, ok := partnerColumns[key.Field]
		if !ok {
			return "", nil, fmt.Errorf("sqlite: unknown partner sort field %q", key.Field)
		}
		dir := "ASC"
		if key.Order == repository.Descending {
			dir = "DESC"
		}
		order = append(order, col+" "+dir)
	}
	order = append(order, "rowid ASC")
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(order, ", "))

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	return b.String(), args, nil
}

func fieldValues(f model.PartnerFields) []any {
	return []any{
		f.Name, f.ProfileImage, f.Subject, f.StudyMode, f.AvailabilityTime,
		f.Location, f.ExperienceLevel, f.Rating, f.Email,
	}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPartner(sc scanner) (*model.Partner, error) {
	var (
		p  model.Partner
		id string
	)
	err := sc.Scan(
		&id, &p.Name, &p.ProfileImage, &p.Subject, &p.StudyMode, &p.AvailabilityTime,
		&p.Location, &p.ExperienceLevel, &p.Rating, &p.Email, &p.PartnerCount, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: scanning partner row: %w", err)
	}

	if p.ID, err = bson.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("sqlite: stored partner id %q: %w", id, err)
	}
	return &p, nil
}
