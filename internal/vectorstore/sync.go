package vectorstore

import (
	"context"
	"fmt"
	"time"

	"zipdex/internal/contextutil"
)

// SyncBatchSize is the number of points pushed per upsert call.
const SyncBatchSize = 1000

// ConflictPolicy decides what happens when the target collection already
// exists on the remote server.
type ConflictPolicy string

const (
	// ConflictSkip leaves the remote collection untouched.
	ConflictSkip ConflictPolicy = "skip"
	// ConflictOverwrite deletes and recreates the remote collection.
	ConflictOverwrite ConflictPolicy = "overwrite"
	// ConflictMerge adds the local points to the existing collection.
	// Points with matching ids are updated, the rest accumulate.
	ConflictMerge ConflictPolicy = "merge"
)

// ParseConflictPolicy validates a policy string from the CLI.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case ConflictSkip, ConflictOverwrite, ConflictMerge:
		return ConflictPolicy(s), nil
	}
	return "", fmt.Errorf("unknown conflict policy %q (want skip, overwrite, or merge)", s)
}

// SyncOptions controls one sync run.
type SyncOptions struct {
	Collection string
	VectorSize int
	Policy     ConflictPolicy
	// Reset deletes the target collection before syncing.
	Reset bool
	// ResetAll deletes every collection on the remote server first.
	ResetAll bool
}

// Syncer pushes a local batch of points to a remote collection. It only
// sees already-aligned points; producing them is the pipeline's job.
type Syncer struct {
	store VectorStore

	// Deletion is asynchronous on the server; Sync polls until the
	// collection is gone before recreating it.
	waitAttempts int
	waitDelay    time.Duration
}

// NewSyncer creates a Syncer over the given store.
func NewSyncer(store VectorStore) *Syncer {
	return &Syncer{store: store, waitAttempts: 10, waitDelay: 500 * time.Millisecond}
}

// SetWaitPolicy overrides how long Sync polls for a pending deletion.
func (s *Syncer) SetWaitPolicy(attempts int, delay time.Duration) {
	s.waitAttempts = attempts
	s.waitDelay = delay
}

// Sync applies the conflict policy and pushes points in batches,
// returning how many points were synced. A skip outcome returns 0 with
// no error.
func (s *Syncer) Sync(ctx context.Context, points []Point, opts SyncOptions) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if opts.ResetAll {
		deleted, err := s.deleteAllCollections(ctx)
		if err != nil {
			return 0, err
		}
		logger.InfoContext(ctx, "reset remote server", "collections_deleted", deleted)
	}

	exists, err := s.store.CollectionExists(ctx, opts.Collection)
	if err != nil {
		return 0, err
	}

	if exists && opts.Reset {
		if err := s.deleteAndWait(ctx, opts.Collection); err != nil {
			return 0, err
		}
		exists = false
	}

	if exists {
		switch opts.Policy {
		case ConflictOverwrite:
			if err := s.deleteAndWait(ctx, opts.Collection); err != nil {
				return 0, err
			}
		case ConflictMerge:
			remote, err := s.store.Count(ctx, opts.Collection)
			if err != nil {
				return 0, err
			}
			logger.InfoContext(ctx, "merging into existing collection",
				"collection", opts.Collection, "local_points", len(points), "remote_points", remote)
		default:
			logger.WarnContext(ctx, "collection exists on remote, skipping sync",
				"collection", opts.Collection, "policy", string(ConflictSkip))
			return 0, nil
		}
	}

	if err := s.store.EnsureCollection(ctx, opts.Collection, opts.VectorSize); err != nil {
		return 0, err
	}

	synced := 0
	for start := 0; start < len(points); start += SyncBatchSize {
		end := start + SyncBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := s.store.Upsert(ctx, opts.Collection, points[start:end]); err != nil {
			return synced, fmt.Errorf("failed to sync batch starting at %d: %w", start, err)
		}
		synced += end - start
	}

	logger.InfoContext(ctx, "sync completed", "collection", opts.Collection, "points", synced)
	return synced, nil
}

// deleteAndWait removes a collection and polls until the server reports
// it gone, since recreation races an in-flight delete.
func (s *Syncer) deleteAndWait(ctx context.Context, collection string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.store.DeleteCollection(ctx, collection); err != nil {
		return err
	}
	logger.InfoContext(ctx, "deleted remote collection", "collection", collection)

	for attempt := 1; attempt <= s.waitAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.waitDelay):
		}

		exists, err := s.store.CollectionExists(ctx, collection)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		logger.DebugContext(ctx, "waiting for collection deletion",
			"collection", collection, "attempt", attempt, "max_attempts", s.waitAttempts)
	}

	logger.WarnContext(ctx, "collection still present after deletion attempts", "collection", collection)
	return nil
}

func (s *Syncer) deleteAllCollections(ctx context.Context) (int, error) {
	names, err := s.store.ListCollections(ctx)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, name := range names {
		if err := s.store.DeleteCollection(ctx, name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
