package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pagescribe/pagescribe/internal/model"
)

// ErrScrapedRecordNotFound is returned for missing records and for records
// owned by another user.
var ErrScrapedRecordNotFound = errors.New("scraped record not found")

const scrapedColumns = `id, url, content, metadata, user_id, created_at`

// CreateScrapedRecord inserts a new scraped record.
func (r *Repository) CreateScrapedRecord(ctx context.Context, rec *model.ScrapedRecord) error {
	meta, err := encodeMetadata(rec.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scraped_data (id, url, content, metadata, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		rec.URL,
		rec.Content,
		meta,
		rec.UserID,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scraped record: %w", err)
	}

	return nil
}

// GetScrapedRecord retrieves a record owned by userID.
func (r *Repository) GetScrapedRecord(ctx context.Context, id, userID string) (*model.ScrapedRecord, error) {
	query := `SELECT ` + scrapedColumns + ` FROM scraped_data WHERE id = $1 AND user_id = $2`

	rec, err := scanScrapedRecord(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScrapedRecordNotFound
		}
		return nil, fmt.Errorf("failed to get scraped record: %w", err)
	}

	return rec, nil
}

// ListScrapedRecords returns the user's records, newest first.
func (r *Repository) ListScrapedRecords(ctx context.Context, userID string) ([]*model.ScrapedRecord, error) {
	query := `
		SELECT ` + scrapedColumns + `
		FROM scraped_data
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scraped records: %w", err)
	}
	defer rows.Close()

	var records []*model.ScrapedRecord
	for rows.Next() {
		rec, err := scanScrapedRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scraped record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scraped records: %w", err)
	}

	return records, nil
}

// UpdateScrapedRecord overwrites url, content and metadata of a record owned
// by rec.UserID.
func (r *Repository) UpdateScrapedRecord(ctx context.Context, rec *model.ScrapedRecord) error {
	meta, err := encodeMetadata(rec.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE scraped_data
		SET url = $3, content = $4, metadata = $5
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, rec.ID, rec.UserID, rec.URL, rec.Content, meta)
	if err != nil {
		return fmt.Errorf("failed to update scraped record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrScrapedRecordNotFound
	}

	return nil
}

// DeleteScrapedRecord removes a record owned by userID.
func (r *Repository) DeleteScrapedRecord(ctx context.Context, id, userID string) error {
	query := `DELETE FROM scraped_data WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete scraped record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrScrapedRecordNotFound
	}

	return nil
}

func scanScrapedRecord(row pgx.Row) (*model.ScrapedRecord, error) {
	var (
		rec  model.ScrapedRecord
		meta []byte
	)
	err := row.Scan(
		&rec.ID,
		&rec.URL,
		&rec.Content,
		&meta,
		&rec.UserID,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Metadata, err = decodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func encodeMetadata(m model.Metadata) ([]byte, error) {
	if m == nil {
		m = model.Metadata{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}

func decodeMetadata(data []byte) (model.Metadata, error) {
	m := model.Metadata{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return m, nil
}
