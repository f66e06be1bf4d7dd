package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tamy417/study-partner-server/internal/model"
)

// setColumns updates columns on the row with the given id and reports the
// outcome the way MongoDB does.
//
// MONGO-SHAPED ACKNOWLEDGMENTS:
// Clients get the same update result from either store:
//
//	{"acknowledged":true,"matchedCount":1,"modifiedCount":0,...}
//
// MatchedCount is whether the row exists; ModifiedCount is whether any value
// actually changed. Mongo reports modifiedCount 0 when a $set writes the
// values a document already has. SQLite's RowsAffected does not: it counts
// every row the WHERE clause hit, even if nothing changed.
//
// HOW WE GET BOTH NUMBERS:
//  1. SELECT COUNT(*) ... WHERE id = ?                → matchedCount
//  2. UPDATE ... WHERE id = ? AND NOT (col IS ? ...)  → RowsAffected = modifiedCount
//
// "IS" rather than "=" so NULLs compare as equal values. Both statements run
// in one transaction, so a concurrent write cannot land between the count and
// the update and make the two numbers disagree.
func setColumns(ctx context.Context, conn *sql.DB, table, id string, columns []string, values []any) (*model.UpdateResult, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning %s update: %w", table, err)
	}
	defer tx.Rollback()

	var matched int64
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, table), id,
	).Scan(&matched)
	if err != nil {
		return nil, fmt.Errorf("sqlite: matching %s %s: %w", table, id, err)
	}

	result := &model.UpdateResult{Acknowledged: true, MatchedCount: matched}
	if matched == 0 {
		return result, tx.Commit()
	}

	assignments := make([]string, len(columns))
	unchanged := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = col + " = ?"
		unchanged[i] = col + " IS ?"
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? AND NOT (%s)`,
		table, strings.Join(assignments, ", "), strings.Join(unchanged, " AND "))

	args := make([]any, 0, 2*len(values)+1)
	args = append(args, values...)
	args = append(args, id)
	args = append(args, values...)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating %s %s: %w", table, id, err)
	}
	if result.ModifiedCount, err = res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing %s update: %w", table, err)
	}
	return result, nil
}

// deleteByID removes one row and reports the deleted count.
func deleteByID(ctx context.Context, conn *sql.DB, table, id string) (*model.DeleteResult, error) {
	res, err := conn.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: deleting %s %s: %w", table, id, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: deleted}, nil
}
