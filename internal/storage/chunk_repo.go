package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// InsertBatchSize is how many chunks go into one transaction.
const InsertBatchSize = 1000

// CollectionStats summarizes the stored contents of one collection.
type CollectionStats struct {
	TotalChunks int
	SourceFiles int
	// ByType counts chunks per chunk_type metadata value.
	ByType map[string]int
}

// ChunkRepo provides methods for chunk operations.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertBatch writes chunks in transactions of InsertBatchSize.
// Each chunk's ID must be set before calling.
func (r *ChunkRepo) InsertBatch(ctx context.Context, chunks []*ChunkRecord) error {
	for start := 0; start < len(chunks); start += InsertBatchSize {
		end := start + InsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := r.insertTx(ctx, chunks[start:end]); err != nil {
			return fmt.Errorf("failed to insert chunk batch starting at %d: %w", start, err)
		}
	}
	return nil
}

func (r *ChunkRepo) insertTx(ctx context.Context, chunks []*ChunkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO chunks (id, collection_id, source_file, position, document, metadata, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, chunk := range chunks {
		meta, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for chunk %s: %w", chunk.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.CollectionID, chunk.SourceFile, chunk.Position,
			chunk.Document, string(meta), encodeEmbedding(chunk.Embedding),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListByCollection returns all chunks for a collection ordered by
// position. This is the exact set a sync pushes remote.
func (r *ChunkRepo) ListByCollection(ctx context.Context, collectionID int) ([]*ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, collection_id, source_file, position, document, metadata, embedding
		 FROM chunks WHERE collection_id = ? ORDER BY position`,
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []*ChunkRecord
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return chunks, nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, collection_id, source_file, position, document, metadata, embedding
		 FROM chunks WHERE id = ?`,
		id,
	)
	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// DeleteByCollection removes all chunks for a collection.
// Used before re-storing a rebuilt collection.
func (r *ChunkRepo) DeleteByCollection(ctx context.Context, collectionID int) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE collection_id = ?", collectionID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// Stats reports chunk, file, and per-type counts for a collection.
func (r *ChunkRepo) Stats(ctx context.Context, collectionID int) (CollectionStats, error) {
	stats := CollectionStats{ByType: make(map[string]int)}

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT source_file) FROM chunks WHERE collection_id = ?",
		collectionID,
	).Scan(&stats.TotalChunks, &stats.SourceFiles)
	if err != nil {
		return CollectionStats{}, fmt.Errorf("failed to count chunks: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(json_extract(metadata, '$.chunk_type'), 'unknown'), COUNT(*)
		 FROM chunks WHERE collection_id = ? GROUP BY 1`,
		collectionID,
	)
	if err != nil {
		return CollectionStats{}, fmt.Errorf("failed to count chunk types: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return CollectionStats{}, fmt.Errorf("failed to scan chunk type count: %w", err)
		}
		stats.ByType[typ] = count
	}

	if err := rows.Err(); err != nil {
		return CollectionStats{}, fmt.Errorf("row iteration error: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*ChunkRecord, error) {
	var chunk ChunkRecord
	var meta string
	var embedding []byte
	err := row.Scan(&chunk.ID, &chunk.CollectionID, &chunk.SourceFile,
		&chunk.Position, &chunk.Document, &meta, &embedding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan chunk: %w", err)
	}

	if err := json.Unmarshal([]byte(meta), &chunk.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for chunk %s: %w", chunk.ID, err)
	}
	chunk.Embedding = decodeEmbedding(embedding)
	return &chunk, nil
}

// encodeEmbedding packs a vector as little-endian float32 bytes.
func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}
