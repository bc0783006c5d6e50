package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/sandevgo/docvault/internal/core"
)

type DocumentsRepo struct {
	db *sql.DB
}

func NewDocumentsRepo(db *sql.DB) *DocumentsRepo {
	return &DocumentsRepo{db: db}
}

// Insert persists a new document record. Uniqueness of vector_store_id and
// file_id is enforced by the database, not in-process, so it holds across
// multiple service instances.
func (r *DocumentsRepo) Insert(ctx context.Context, doc core.Document) (int64, error) {
	query := `INSERT INTO documents (vector_store_id, file_id, file_name, size_bytes, uploaded_at)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		doc.VectorStoreID, doc.FileID, doc.FileName, doc.SizeBytes, doc.UploadedAt,
	)
	if err != nil {
		if dup := asDuplicate(err, doc); dup != nil {
			return 0, dup
		}
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

func asDuplicate(err error, doc core.Document) *core.DuplicateResourceError {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return nil
	}
	if strings.Contains(sqliteErr.Error(), "documents.file_id") {
		return &core.DuplicateResourceError{Field: "file_id", Value: doc.FileID}
	}
	return &core.DuplicateResourceError{Field: "vector_store_id", Value: doc.VectorStoreID}
}

func (r *DocumentsRepo) GetByID(ctx context.Context, id int64) (core.Document, error) {
	query := `SELECT id, vector_store_id, file_id, file_name, size_bytes, uploaded_at
		FROM documents WHERE id = ?`

	var doc core.Document
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.VectorStoreID, &doc.FileID, &doc.FileName, &doc.SizeBytes, &doc.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, fmt.Errorf("document %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

func (r *DocumentsRepo) List(ctx context.Context) ([]core.Document, error) {
	query := `SELECT id, vector_store_id, file_id, file_name, size_bytes, uploaded_at
		FROM documents ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var doc core.Document
		if err := rows.Scan(
			&doc.ID, &doc.VectorStoreID, &doc.FileID, &doc.FileName, &doc.SizeBytes, &doc.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
