package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pagescribe/pagescribe/internal/model"
)

// ErrPromptLogNotFound is returned for missing logs and for logs owned by
// another user.
var ErrPromptLogNotFound = errors.New("prompt log not found")

const promptLogColumns = `id, prompt_text, generated_output, user_id, created_at`

// CreatePromptLog inserts a new prompt log.
func (r *Repository) CreatePromptLog(ctx context.Context, log *model.PromptLog) error {
	query := `
		INSERT INTO prompt_logs (id, prompt_text, generated_output, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		log.ID,
		log.PromptText,
		log.GeneratedOutput,
		log.UserID,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prompt log: %w", err)
	}

	return nil
}

// GetPromptLog retrieves a log owned by userID.
func (r *Repository) GetPromptLog(ctx context.Context, id, userID string) (*model.PromptLog, error) {
	query := `SELECT ` + promptLogColumns + ` FROM prompt_logs WHERE id = $1 AND user_id = $2`

	log, err := scanPromptLog(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPromptLogNotFound
		}
		return nil, fmt.Errorf("failed to get prompt log: %w", err)
	}

	return log, nil
}

// ListPromptLogs returns the user's logs, newest first.
func (r *Repository) ListPromptLogs(ctx context.Context, userID string) ([]*model.PromptLog, error) {
	query := `
		SELECT ` + promptLogColumns + `
		FROM prompt_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.PromptLog
	for rows.Next() {
		log, err := scanPromptLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompt logs: %w", err)
	}

	return logs, nil
}

// UpdatePromptLog overwrites the text fields of a log owned by log.UserID.
func (r *Repository) UpdatePromptLog(ctx context.Context, log *model.PromptLog) error {
	query := `
		UPDATE prompt_logs
		SET prompt_text = $3, generated_output = $4
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, log.ID, log.UserID, log.PromptText, log.GeneratedOutput)
	if err != nil {
		return fmt.Errorf("failed to update prompt log: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPromptLogNotFound
	}

	return nil
}

// DeletePromptLog removes a log owned by userID.
func (r *Repository) DeletePromptLog(ctx context.Context, id, userID string) error {
	query := `DELETE FROM prompt_logs WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete prompt log: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPromptLogNotFound
	}

	return nil
}

func scanPromptLog(row pgx.Row) (*model.PromptLog, error) {
	var log model.PromptLog
	err := row.Scan(
		&log.ID,
		&log.PromptText,
		&log.GeneratedOutput,
		&log.UserID,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &log, nil
}
