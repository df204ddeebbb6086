package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// CollectionRecord represents a named build target in the catalog.
// Name doubles as the remote collection name.
type CollectionRecord struct {
	ID         int
	Name       string
	Model      string // Embedding model the vectors were produced with
	VectorSize int
	CreatedAt  time.Time
}

// ChunkRecord is one stored chunk: document text, its metadata, and the
// embedding vector, keyed by the same UUID used as the remote point id.
type ChunkRecord struct {
	ID           string
	CollectionID int
	SourceFile   string // Archive-relative path of the origin file
	Position     int    // Insertion order within the collection
	Document     string
	Metadata     map[string]any
	Embedding    []float32
}

// chunkIDSpace namespaces chunk UUIDs so the same file and content
// always map to the same id across rebuilds.
var chunkIDSpace = uuid.NameSpaceOID

// ChunkID derives a deterministic UUID for a chunk from its source file
// and content. Rebuilding an unchanged archive yields identical ids, so
// a merge sync updates points in place instead of duplicating them.
func ChunkID(sourceFile, document string) string {
	sum := sha256.Sum256([]byte(document))
	name := sourceFile + ":" + hex.EncodeToString(sum[:16])
	return uuid.NewSHA1(chunkIDSpace, []byte(name)).String()
}
