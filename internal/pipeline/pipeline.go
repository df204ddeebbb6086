// Package pipeline orchestrates a build: extract an archive, chunk its
// files, embed the chunks, store them in the local catalog, and sync
// the result to the remote vector server.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"zipdex/internal/archive"
	"zipdex/internal/chunker"
	"zipdex/internal/contextutil"
	"zipdex/internal/embedder"
	"zipdex/internal/storage"
	"zipdex/internal/vectorstore"
)

// Options configures one build run.
type Options struct {
	ZipPath    string
	Collection string
	Model      string
	Chunking   chunker.Config
	Policy     vectorstore.ConflictPolicy
	// Reset deletes the remote collection before syncing.
	Reset bool
	// ResetAll wipes every remote collection before syncing.
	ResetAll bool
}

// Result summarizes a completed build.
type Result struct {
	Files  int
	Chunks int
	Synced int
	Stats  storage.CollectionStats
}

// Pipeline wires the build stages together.
type Pipeline struct {
	collections *storage.CollectionRepo
	chunks      *storage.ChunkRepo
	embedder    embedder.Embedder
	syncer      *vectorstore.Syncer
}

// New creates a build pipeline.
func New(collections *storage.CollectionRepo, chunks *storage.ChunkRepo, emb embedder.Embedder, syncer *vectorstore.Syncer) *Pipeline {
	return &Pipeline{
		collections: collections,
		chunks:      chunks,
		embedder:    emb,
		syncer:      syncer,
	}
}

// Run executes the full build. It aborts before touching the catalog or
// the remote server if the archive yields no chunks.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := opts.Chunking.Validate(); err != nil {
		return nil, err
	}

	files, err := archive.ExtractZip(ctx, opts.ZipPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("archive %s contains no indexable files", opts.ZipPath)
	}
	logger.InfoContext(ctx, "extracted archive", "path", opts.ZipPath, "files", len(files))

	chunks, err := p.chunkFiles(ctx, files, opts.Chunking)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced from %d files, nothing to index", len(files))
	}
	logger.InfoContext(ctx, "chunked files", "files", len(files), "chunks", len(chunks))

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	records, points := p.align(chunks, vectors)

	col, err := p.collections.GetOrCreate(ctx, opts.Collection, opts.Model, p.embedder.Dimension())
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].CollectionID = col.ID
	}

	// A rebuild replaces the local collection wholesale so stale chunks
	// from a previous archive don't linger.
	if err := p.chunks.DeleteByCollection(ctx, col.ID); err != nil {
		return nil, err
	}
	if err := p.chunks.InsertBatch(ctx, records); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "stored chunks locally", "collection", opts.Collection, "chunks", len(records))

	synced, err := p.syncer.Sync(ctx, points, vectorstore.SyncOptions{
		Collection: opts.Collection,
		VectorSize: p.embedder.Dimension(),
		Policy:     opts.Policy,
		Reset:      opts.Reset,
		ResetAll:   opts.ResetAll,
	})
	if err != nil {
		return nil, fmt.Errorf("local build succeeded but remote sync failed: %w", err)
	}

	stats, err := p.chunks.Stats(ctx, col.ID)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "build completed",
		"collection", opts.Collection,
		"files", len(files),
		"chunks", stats.TotalChunks,
		"synced", synced,
	)

	return &Result{
		Files:  len(files),
		Chunks: len(records),
		Synced: synced,
		Stats:  stats,
	}, nil
}

// chunkFiles runs the per-file strategies concurrently, preserving
// archive order in the flattened output.
func (p *Pipeline) chunkFiles(ctx context.Context, files []archive.File, cfg chunker.Config) ([]chunker.Chunk, error) {
	perFile := make([][]chunker.Chunk, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			strategy := chunker.ForFile(file.Path, cfg)
			perFile[i] = strategy.Chunk(file.Content, file.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var chunks []chunker.Chunk
	for _, fc := range perFile {
		chunks = append(chunks, fc...)
	}
	return chunks, nil
}

// embedChunks embeds chunk documents in batches of embedder.BatchSize.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []chunker.Chunk) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedder.BatchSize {
		end := start + embedder.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		batch, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		vectors = append(vectors, batch...)

		logger.DebugContext(ctx, "embedded batch", "from", start, "to", end, "total", len(chunks))
	}

	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}
	return vectors, nil
}

// align pairs every chunk with its vector under a shared deterministic
// id, producing the catalog records and the remote points in lockstep.
func (p *Pipeline) align(chunks []chunker.Chunk, vectors [][]float32) ([]*storage.ChunkRecord, []vectorstore.Point) {
	records := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))

	for i, chunk := range chunks {
		id := storage.ChunkID(chunk.SourceFile, chunk.Content)

		records[i] = &storage.ChunkRecord{
			ID:         id,
			SourceFile: chunk.SourceFile,
			Position:   i,
			Document:   chunk.Content,
			Metadata:   chunk.Metadata,
			Embedding:  vectors[i],
		}

		payload := map[string]any{
			"document":    chunk.Content,
			"source_file": chunk.SourceFile,
		}
		for k, v := range chunk.Metadata {
			payload[k] = v
		}
		points[i] = vectorstore.Point{
			ID:      id,
			Vector:  vectors[i],
			Payload: payload,
		}
	}
	return records, points
}
