package chunker

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	// headingRe matches a newline immediately followed by a level 1-3
	// heading line. Sections are cut before the heading so each heading
	// stays with the content it introduces.
	headingRe = regexp.MustCompile(`\n#{1,3}\s+[^\n]+`)

	// paragraphRe splits a section into blank-line-delimited paragraphs.
	paragraphRe = regexp.MustCompile(`\n\n+`)
)

// Markdown chunks markdown content by heading-delimited sections.
// Sections within twice the chunk size are emitted whole; larger sections
// are re-packed on paragraph boundaries.
type Markdown struct {
	cfg Config
	md  goldmark.Markdown
}

// NewMarkdown creates a markdown strategy with the given configuration.
func NewMarkdown(cfg Config) *Markdown {
	return &Markdown{cfg: cfg, md: goldmark.New()}
}

// Chunk implements the Chunker contract for markdown content.
func (m *Markdown) Chunk(content, path string) []Chunk {
	sections := splitSections(content)
	title := m.extractTitle(content, path)

	var chunks []Chunk
	for i, section := range sections {
		trimmed := strings.TrimSpace(section)
		if trimmed == "" {
			// Dropped sections still consume an index: section_index is a
			// provenance marker, not a dense sequence.
			continue
		}

		if len(section) > m.cfg.Size*2 {
			paragraphs := paragraphRe.Split(section, -1)
			for _, packed := range newPacker(m.cfg, "\n\n").pack(paragraphs) {
				chunks = append(chunks, Chunk{
					Content:    packed,
					SourceFile: path,
					Metadata:   markdownMeta(i, title),
				})
			}
			continue
		}

		chunks = append(chunks, Chunk{
			Content:    trimmed,
			SourceFile: path,
			Metadata:   markdownMeta(i, title),
		})
	}
	return chunks
}

func markdownMeta(sectionIndex int, title string) map[string]any {
	return map[string]any{
		"chunk_type":    "markdown",
		"section_index": sectionIndex,
		"title":         title,
	}
}

// splitSections cuts content immediately before each heading line. The
// leading newline is consumed as the delimiter; content before the first
// heading forms its own section.
func splitSections(content string) []string {
	locs := headingRe.FindAllStringIndex(content, -1)
	sections := make([]string, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		sections = append(sections, content[prev:loc[0]])
		prev = loc[0] + 1
	}
	return append(sections, content[prev:])
}

// extractTitle finds the document title: the first H1, else the first H2,
// else the filename with its extension stripped and words capitalized.
func (m *Markdown) extractTitle(content, path string) string {
	doc := m.md.Parser().Parse(text.NewReader([]byte(content)))

	var firstH1, firstH2 string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headingText := nodeText(heading, []byte(content))
		if heading.Level == 1 && firstH1 == "" {
			firstH1 = headingText
			return ast.WalkStop, nil
		}
		if heading.Level == 2 && firstH2 == "" {
			firstH2 = headingText
		}
		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	return titleFromFilename(path)
}

// nodeText collects the plain text under a node.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func titleFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(name))
	for i, word := range words {
		runes := []rune(word)
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
