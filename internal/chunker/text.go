package chunker

// Text chunks plain text by packing sentences.
type Text struct {
	cfg Config
}

// NewText creates a plain-text strategy with the given configuration.
func NewText(cfg Config) *Text {
	return &Text{cfg: cfg}
}

// Chunk implements the Chunker contract for plain text.
func (t *Text) Chunk(content, path string) []Chunk {
	var chunks []Chunk
	for _, packed := range newPacker(t.cfg, " ").pack(splitSentences(content)) {
		chunks = append(chunks, Chunk{
			Content:    packed,
			SourceFile: path,
			Metadata:   map[string]any{"chunk_type": "text"},
		})
	}
	return chunks
}

// splitSentences cuts content after sentence-terminal punctuation that is
// followed by whitespace. The whitespace run between sentences is
// consumed; terminal punctuation stays with its sentence.
func splitSentences(content string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(content); {
		c := content[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(content) && isSpace(content[i+1]) {
			sentences = append(sentences, content[start:i+1])
			i++
			for i < len(content) && isSpace(content[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(content) {
		sentences = append(sentences, content[start:])
	}
	return sentences
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
