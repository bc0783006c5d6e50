package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/docvault/internal/core"
)

type FeedbackRepo struct {
	db *sql.DB
}

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

func (r *FeedbackRepo) Insert(ctx context.Context, fb core.Feedback) (int64, error) {
	query := `INSERT INTO chat_feedback (document_id, thread_id, user_message, assistant_response, is_helpful, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		fb.DocumentID, fb.ThreadID, fb.UserMessage, fb.AssistantResponse, fb.IsHelpful, fb.Note, fb.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return res.LastInsertId()
}

func (r *FeedbackRepo) ListByDocument(ctx context.Context, documentID int64) ([]core.Feedback, error) {
	query := `SELECT id, document_id, thread_id, user_message, assistant_response, is_helpful, note, created_at
		FROM chat_feedback WHERE document_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var items []core.Feedback
	for rows.Next() {
		var fb core.Feedback
		var note sql.NullString
		if err := rows.Scan(
			&fb.ID, &fb.DocumentID, &fb.ThreadID, &fb.UserMessage, &fb.AssistantResponse, &fb.IsHelpful, &note, &fb.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		fb.Note = note.String
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
