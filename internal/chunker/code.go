package chunker

import (
	"regexp"
	"sort"
	"strings"
)

// blockRe splits content into blank-line-delimited logical blocks for the
// no-boundary fallback.
var blockRe = regexp.MustCompile(`\n\s*\n+`)

// Code chunks source files at heuristic construct boundaries. The file's
// language tag selects a boundary pattern list; segments between
// boundaries are folded together while small and re-packed line by line
// when they outgrow the chunk size.
type Code struct {
	cfg Config
}

// NewCode creates a code strategy with the given configuration.
func NewCode(cfg Config) *Code {
	return &Code{cfg: cfg}
}

// Chunk implements the Chunker contract for source code.
func (c *Code) Chunk(content, path string) []Chunk {
	lang := Classify(path)

	positions := boundaryOffsets(content, patternsFor(lang))
	if len(positions) == 0 {
		return c.packBlocks(content, path, lang)
	}

	var chunks []Chunk
	prev := 0
	for _, pos := range positions {
		segment := strings.TrimSpace(content[prev:pos])

		// Short inter-boundary spans are folded together by leaving the
		// cursor in place; only the first segment and oversized segments
		// are finalized immediately.
		if len(segment) <= c.cfg.Size && prev != 0 {
			continue
		}

		if len(segment) > c.cfg.Size {
			chunks = append(chunks, c.packLines(segment, path, lang)...)
		} else if segment != "" {
			chunks = append(chunks, Chunk{
				Content:    segment,
				SourceFile: path,
				Metadata:   codeMeta(lang),
			})
		}
		prev = pos
	}

	// The tail past the last boundary is emitted whole regardless of size.
	if remaining := strings.TrimSpace(content[prev:]); remaining != "" {
		chunks = append(chunks, Chunk{
			Content:    remaining,
			SourceFile: path,
			Metadata:   codeMeta(lang),
		})
	}
	return chunks
}

func codeMeta(lang Language) map[string]any {
	return map[string]any{
		"chunk_type": "code",
		"language":   string(lang),
	}
}

// boundaryOffsets scans content with every pattern in the list and merges
// the match start offsets into one ascending, deduplicated slice.
func boundaryOffsets(content string, patterns []*regexp.Regexp) []int {
	seen := make(map[int]struct{})
	for _, pattern := range patterns {
		for _, loc := range pattern.FindAllStringIndex(content, -1) {
			seen[loc[0]] = struct{}{}
		}
	}
	positions := make([]int, 0, len(seen))
	for pos := range seen {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// packBlocks is the fallback when no boundary pattern matches: pack
// blank-line-delimited blocks instead.
func (c *Code) packBlocks(content, path string, lang Language) []Chunk {
	var blocks []string
	for _, block := range blockRe.Split(content, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		blocks = append(blocks, block)
	}

	var chunks []Chunk
	for _, packed := range newPacker(c.cfg, "\n\n").pack(blocks) {
		chunks = append(chunks, Chunk{
			Content:    packed,
			SourceFile: path,
			Metadata:   codeMeta(lang),
		})
	}
	return chunks
}

// packLines re-packs an oversized segment line by line. Overlap carries
// trailing whole lines rather than a byte tail, so no line is ever split.
func (c *Code) packLines(segment, path string, lang Language) []Chunk {
	p := newPacker(c.cfg, "\n")
	p.seed = lineTail

	var chunks []Chunk
	for _, packed := range p.pack(strings.Split(segment, "\n")) {
		chunks = append(chunks, Chunk{
			Content:    packed,
			SourceFile: path,
			Metadata:   codeMeta(lang),
		})
	}
	return chunks
}
