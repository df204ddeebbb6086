package vectorstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"zipdex/internal/vectorstore"
	"zipdex/internal/vectorstore/mocks"
)

func newTestSyncer(store vectorstore.VectorStore) *vectorstore.Syncer {
	s := vectorstore.NewSyncer(store)
	s.SetWaitPolicy(2, time.Millisecond)
	return s
}

func makePoints(n int) []vectorstore.Point {
	points := make([]vectorstore.Point, n)
	for i := range points {
		points[i] = vectorstore.Point{
			ID:     fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
			Vector: []float32{float32(i), 0.5},
		}
	}
	return points
}

func TestSyncNewCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()
	points := makePoints(3)

	store.EXPECT().CollectionExists(ctx, "notes").Return(false, nil)
	store.EXPECT().EnsureCollection(ctx, "notes", 2).Return(nil)
	store.EXPECT().Upsert(ctx, "notes", gomock.Len(3)).Return(nil)

	syncer := newTestSyncer(store)
	synced, err := syncer.Sync(ctx, points, vectorstore.SyncOptions{
		Collection: "notes",
		VectorSize: 2,
		Policy:     vectorstore.ConflictSkip,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if synced != 3 {
		t.Errorf("Sync() synced = %d, want 3", synced)
	}
}

func TestSyncSkipPolicy(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()

	store.EXPECT().CollectionExists(ctx, "notes").Return(true, nil)

	syncer := newTestSyncer(store)
	synced, err := syncer.Sync(ctx, makePoints(3), vectorstore.SyncOptions{
		Collection: "notes",
		VectorSize: 2,
		Policy:     vectorstore.ConflictSkip,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if synced != 0 {
		t.Errorf("Sync() synced = %d, want 0 for skip", synced)
	}
}

func TestSyncOverwritePolicy(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		store.EXPECT().CollectionExists(ctx, "notes").Return(true, nil),
		store.EXPECT().DeleteCollection(ctx, "notes").Return(nil),
		store.EXPECT().CollectionExists(ctx, "notes").Return(false, nil),
		store.EXPECT().EnsureCollection(ctx, "notes", 2).Return(nil),
		store.EXPECT().Upsert(ctx, "notes", gomock.Len(2)).Return(nil),
	)

	syncer := newTestSyncer(store)
	synced, err := syncer.Sync(ctx, makePoints(2), vectorstore.SyncOptions{
		Collection: "notes",
		VectorSize: 2,
		Policy:     vectorstore.ConflictOverwrite,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if synced != 2 {
		t.Errorf("Sync() synced = %d, want 2", synced)
	}
}

func TestSyncMergePolicy(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()

	store.EXPECT().CollectionExists(ctx, "notes").Return(true, nil)
	store.EXPECT().Count(ctx, "notes").Return(uint64(42), nil)
	store.EXPECT().EnsureCollection(ctx, "notes", 2).Return(nil)
	store.EXPECT().Upsert(ctx, "notes", gomock.Len(2)).Return(nil)

	syncer := newTestSyncer(store)
	synced, err := syncer.Sync(ctx, makePoints(2), vectorstore.SyncOptions{
		Collection: "notes",
		VectorSize: 2,
		Policy:     vectorstore.ConflictMerge,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if synced != 2 {
		t.Errorf("Sync() synced = %d, want 2", synced)
	}
}

func TestSyncReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		store.EXPECT().CollectionExists(ctx, "notes").Return(true, nil),
		store.EXPECT().DeleteCollection(ctx, "notes").Return(nil),
		// Deletion finishes on the second poll.
		store.EXPECT().CollectionExists(ctx, "notes").Return(true, nil),
		store.EXPECT().CollectionExists(ctx, "notes").Return(false, nil),
		store.EXPECT().EnsureCollection(ctx, "notes", 2).Return(nil),
		store.EXPECT().Upsert(ctx, "notes", gomock.Len(1)).Return(nil),
	)

	syncer := newTestSyncer(store)
	synced, err := syncer.Sync(ctx, makePoints(1), vectorstore.SyncOptions{
		Collection: "notes",
		VectorSize: 2,
		Policy:     vectorstore.ConflictSkip,
		Reset:      true,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if synced != 1 {
		t.Errorf("Sync() synced = %d, want 1", synced)
	}
}

func TestSyncResetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()

	store.EXPECT().ListCollections(ctx).Return([]string{"a", "b"}, nil)
	store.EXPECT().DeleteCollection(ctx, "a").Return(nil)
	store.EXPECT().DeleteCollection(ctx, "b").Return(nil)
	store.EXPECT().CollectionExists(ctx, "notes").Return(false, nil)
	store.EXPECT().EnsureCollection(ctx, "notes", 2).Return(nil)
	store.EXPECT().Upsert(ctx, "notes", gomock.Len(1)).Return(nil)

	syncer := newTestSyncer(store)
	_, err := syncer.Sync(ctx, makePoints(1), vectorstore.SyncOptions{
		Collection: "notes",
		VectorSize: 2,
		Policy:     vectorstore.ConflictSkip,
		ResetAll:   true,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
}

func TestSyncBatching(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()
	points := makePoints(vectorstore.SyncBatchSize + 250)

	store.EXPECT().CollectionExists(ctx, "notes").Return(false, nil)
	store.EXPECT().EnsureCollection(ctx, "notes", 2).Return(nil)
	gomock.InOrder(
		store.EXPECT().Upsert(ctx, "notes", gomock.Len(vectorstore.SyncBatchSize)).Return(nil),
		store.EXPECT().Upsert(ctx, "notes", gomock.Len(250)).Return(nil),
	)

	syncer := newTestSyncer(store)
	synced, err := syncer.Sync(ctx, points, vectorstore.SyncOptions{
		Collection: "notes",
		VectorSize: 2,
		Policy:     vectorstore.ConflictSkip,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if synced != len(points) {
		t.Errorf("Sync() synced = %d, want %d", synced, len(points))
	}
}

func TestSyncUpsertError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()
	boom := errors.New("connection refused")

	store.EXPECT().CollectionExists(ctx, "notes").Return(false, nil)
	store.EXPECT().EnsureCollection(ctx, "notes", 2).Return(nil)
	store.EXPECT().Upsert(ctx, "notes", gomock.Any()).Return(boom)

	syncer := newTestSyncer(store)
	synced, err := syncer.Sync(ctx, makePoints(2), vectorstore.SyncOptions{
		Collection: "notes",
		VectorSize: 2,
		Policy:     vectorstore.ConflictSkip,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Sync() error = %v, want wrapped %v", err, boom)
	}
	if synced != 0 {
		t.Errorf("Sync() synced = %d, want 0", synced)
	}
}

func TestParseConflictPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    vectorstore.ConflictPolicy
		wantErr bool
	}{
		{input: "skip", want: vectorstore.ConflictSkip},
		{input: "overwrite", want: vectorstore.ConflictOverwrite},
		{input: "merge", want: vectorstore.ConflictMerge},
		{input: "replace", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := vectorstore.ParseConflictPolicy(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseConflictPolicy(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConflictPolicy(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseConflictPolicy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
