package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// CollectionRepo provides methods for collection operations.
type CollectionRepo struct {
	db *sql.DB
}

// NewCollectionRepo creates a new CollectionRepo.
func NewCollectionRepo(db *sql.DB) *CollectionRepo {
	return &CollectionRepo{db: db}
}

// GetOrCreate gets an existing collection by name, or creates it if it
// doesn't exist. An existing collection must match the requested model
// and vector size; a mismatch means the caller is about to mix vectors
// from different models.
func (r *CollectionRepo) GetOrCreate(ctx context.Context, name, model string, vectorSize int) (CollectionRecord, error) {
	col, err := r.GetByName(ctx, name)
	if err == nil {
		if col.Model != model || col.VectorSize != vectorSize {
			return CollectionRecord{}, fmt.Errorf(
				"collection %q was built with model %s (size %d), requested %s (size %d)",
				name, col.Model, col.VectorSize, model, vectorSize)
		}
		return col, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return CollectionRecord{}, err
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO collections (name, model, vector_size) VALUES (?, ?, ?)",
		name, model, vectorSize,
	)
	if err != nil {
		return CollectionRecord{}, fmt.Errorf("failed to create collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return CollectionRecord{}, err
	}

	return r.getByID(ctx, id)
}

// GetByName gets a collection by name. Returns ErrNotFound if missing.
func (r *CollectionRepo) GetByName(ctx context.Context, name string) (CollectionRecord, error) {
	var col CollectionRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, model, vector_size, created_at FROM collections WHERE name = ?",
		name,
	).Scan(&col.ID, &col.Name, &col.Model, &col.VectorSize, &col.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return CollectionRecord{}, ErrNotFound
	}
	if err != nil {
		return CollectionRecord{}, fmt.Errorf("failed to query collection: %w", err)
	}
	return col, nil
}

func (r *CollectionRepo) getByID(ctx context.Context, id int64) (CollectionRecord, error) {
	var col CollectionRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, model, vector_size, created_at FROM collections WHERE id = ?",
		id,
	).Scan(&col.ID, &col.Name, &col.Model, &col.VectorSize, &col.CreatedAt)
	if err != nil {
		return CollectionRecord{}, fmt.Errorf("failed to query collection: %w", err)
	}
	return col, nil
}

// ListAll returns all collections ordered by name.
func (r *CollectionRepo) ListAll(ctx context.Context) ([]CollectionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, model, vector_size, created_at FROM collections ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cols []CollectionRecord
	for rows.Next() {
		var col CollectionRecord
		if err := rows.Scan(&col.ID, &col.Name, &col.Model, &col.VectorSize, &col.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		cols = append(cols, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return cols, nil
}
