package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raseed-app/raseed/internal/normalize"
	"github.com/raseed-app/raseed/internal/service"
)

// SaveReceipts upserts raw receipt documents. The full document is
// stored as JSON; a few fields are lifted into indexed columns for
// range queries. Documents without an id are rejected so ingestion
// stays idempotent.
func (s *SQLiteStorage) SaveReceipts(ctx context.Context, userID string, records []service.RawRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO receipts (id, user_id, timestamp, vendor, category, total_amount, document)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			timestamp = excluded.timestamp,
			vendor = excluded.vendor,
			category = excluded.category,
			total_amount = excluded.total_amount,
			document = excluded.document
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, raw := range records {
		out := normalize.Record(raw)
		r := out.Receipt
		if r.ID == "" {
			return fmt.Errorf("record at index %d: missing id", i)
		}

		document, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("record at index %d: failed to encode document: %w", i, err)
		}

		var ts any
		if r.HasTimestamp() {
			ts = r.Timestamp
		}

		if _, err := stmt.ExecContext(ctx, r.ID, userID, ts, r.Vendor, r.Category, r.TotalAmount, string(document)); err != nil {
			return fmt.Errorf("failed to save receipt %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit receipts: %w", err)
	}

	return nil
}

// FetchReceipts returns a user's raw receipt documents in [start, end).
// Rows with no timestamp are always included: detectors decide whether
// they participate in time-bucketed views.
func (s *SQLiteStorage) FetchReceipts(ctx context.Context, userID string, start, end time.Time) ([]service.RawRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document FROM receipts
		WHERE user_id = ?
		  AND (timestamp IS NULL OR (timestamp >= ? AND timestamp < ?))
		ORDER BY timestamp, id
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]service.RawRecord, 0)
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}

		var raw service.RawRecord
		decoder := json.NewDecoder(bytes.NewReader([]byte(document)))
		decoder.UseNumber()
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode receipt document: %w", err)
		}
		records = append(records, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	return records, nil
}

// ReceiptCount returns the number of stored receipts for a user.
func (s *SQLiteStorage) ReceiptCount(ctx context.Context, userID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts WHERE user_id = ?`, userID).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to count receipts: %w", err)
	}
	return count, nil
}
