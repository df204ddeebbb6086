// Package chunker splits file content into bounded, overlapping segments
// for embedding. Three strategies cover markdown, source code, and plain
// text; the strategy is selected from the file extension. Splitting is
// heuristic (pattern-based), not a parser: the only guarantees are bounded
// size, source order, and overlap continuity.
package chunker

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Defaults for the packing configuration.
const (
	DefaultSize    = 1000
	DefaultOverlap = 100
)

// ErrInvalidConfig is returned by Config.Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid chunker config")

// Config holds the packing parameters shared by all strategies.
// Size is the target chunk length in bytes; Overlap is the amount of
// trailing buffer carried into the next chunk.
type Config struct {
	Size    int
	Overlap int
}

// DefaultConfig returns the standard 1000/100 configuration.
func DefaultConfig() Config {
	return Config{Size: DefaultSize, Overlap: DefaultOverlap}
}

// Validate rejects configurations that cannot terminate. An overlap at or
// above the chunk size would keep the accumulation buffer above the flush
// threshold forever, so it is refused up front instead of clamped.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidConfig, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidConfig, c.Overlap, c.Size)
	}
	return nil
}

// Chunk is a bounded text segment plus provenance metadata. Content is
// whitespace-trimmed and non-empty. Metadata always carries "chunk_type";
// markdown chunks add "section_index" and "title", code chunks add
// "language".
type Chunk struct {
	Content    string
	SourceFile string
	Metadata   map[string]any
}

// Chunker is the single chunking contract implemented by the markdown,
// code, and text strategies. Chunk is pure with respect to its inputs:
// instances hold no per-call state and may be reused across files and
// goroutines.
type Chunker interface {
	Chunk(content, path string) []Chunk
}

// Extension tables for strategy selection. Everything not listed here is
// treated as source code.
var (
	markupExts = map[string]struct{}{
		".md": {}, ".mdx": {}, ".markdown": {},
	}
	plainExts = map[string]struct{}{
		".txt": {}, ".csv": {}, ".log": {}, ".conf": {}, ".ini": {},
		".cfg": {}, ".yaml": {}, ".yml": {}, ".json": {}, ".toml": {},
	}
)

// ForFile selects the strategy for a file path. Every extension resolves
// to a strategy; code is the universal default. The extension match is
// case-insensitive.
func ForFile(path string, cfg Config) Chunker {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := markupExts[ext]; ok {
		return NewMarkdown(cfg)
	}
	if _, ok := plainExts[ext]; ok {
		return NewText(cfg)
	}
	return NewCode(cfg)
}
