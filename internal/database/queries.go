package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zombar/newscred/internal/apperr"
	"github.com/zombar/newscred/internal/models"
)

const defaultListLimit = 50

// querier is the read surface shared by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Save stores a result in the given collection and returns its id. A result
// without an id gets one here; history and report rows of the same analysis
// are separate entities with separate ids.
func (db *DB) Save(ctx context.Context, collection string, result *models.AnalysisResult) (string, error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	createdAt := result.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, db.rebind(`
		INSERT INTO results (id, collection, label, confidence, credibility_score,
			source_text, payload, reviewer_notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), result.ID, collection, result.Label, result.Confidence, result.CredibilityScore,
		result.SourceText, string(payload), result.ReviewerNotes, createdAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to insert result: %w", err)
	}

	return result.ID, nil
}

// Get retrieves one result from a collection by id.
func (db *DB) Get(ctx context.Context, collection, id string) (*models.AnalysisResult, error) {
	var (
		payload   string
		notes     string
		createdAt int64
	)

	err := db.conn.QueryRowContext(ctx, db.rebind(`
		SELECT payload, reviewer_notes, created_at
		FROM results
		WHERE collection = ? AND id = ?
	`), collection, id).Scan(&payload, &notes, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %q: %w", collection, id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	return decodeRow(payload, notes, createdAt, id)
}

// List retrieves a collection page, newest first.
func (db *DB) List(ctx context.Context, collection string, limit, offset int) ([]*models.AnalysisResult, error) {
	return db.list(ctx, db.conn, collection, limit, offset)
}

// ListPage retrieves a collection page together with the collection total.
// Both reads run in one transaction so the total agrees with the page even
// while concurrent writes land.
func (db *DB) ListPage(ctx context.Context, collection string, limit, offset int) ([]*models.AnalysisResult, int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	items, err := db.list(ctx, tx, collection, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := db.count(ctx, tx, collection)
	if err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return items, total, nil
}

func (db *DB) list(ctx context.Context, q querier, collection string, limit, offset int) ([]*models.AnalysisResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := q.QueryContext(ctx, db.rebind(`
		SELECT id, payload, reviewer_notes, created_at
		FROM results
		WHERE collection = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), collection, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []*models.AnalysisResult{}
	for rows.Next() {
		var (
			id        string
			payload   string
			notes     string
			createdAt int64
		)
		if err := rows.Scan(&id, &payload, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		result, err := decodeRow(payload, notes, createdAt, id)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

// Delete removes one result from a collection.
func (db *DB) Delete(ctx context.Context, collection, id string) error {
	result, err := db.conn.ExecContext(ctx,
		db.rebind("DELETE FROM results WHERE collection = ? AND id = ?"), collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %q: %w", collection, id, apperr.ErrNotFound)
	}

	return nil
}

// UpdateReviewerNotes attaches the asynchronously generated notes to a
// report. The notes column is authoritative; the stored payload keeps its
// original shape.
func (db *DB) UpdateReviewerNotes(ctx context.Context, id, notes string) error {
	result, err := db.conn.ExecContext(ctx,
		db.rebind("UPDATE results SET reviewer_notes = ? WHERE collection = ? AND id = ?"),
		notes, models.CollectionReports, id)
	if err != nil {
		return fmt.Errorf("failed to update reviewer notes: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %q: %w", models.CollectionReports, id, apperr.ErrNotFound)
	}

	return nil
}

// Count reports the number of rows in a collection.
func (db *DB) Count(ctx context.Context, collection string) (int, error) {
	return db.count(ctx, db.conn, collection)
}

func (db *DB) count(ctx context.Context, q querier, collection string) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		db.rebind("SELECT COUNT(*) FROM results WHERE collection = ?"), collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

func decodeRow(payload, notes string, createdAt int64, id string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result payload: %w", err)
	}

	result.ID = id
	result.ReviewerNotes = notes
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Unix(0, createdAt).UTC()
	}
	return &result, nil
}
