package chunker

import "strings"

// packer folds a sequence of logical units (paragraphs, lines, sentences)
// into size-bounded chunks. Units are joined with sep into a growing
// buffer; when appending the next unit would push the joined buffer to or
// past the target size, the buffer is flushed and the next buffer is
// seeded with the tail of the flushed one. A unit longer than the target
// is still appended whole: unit atomicity wins over strict size bounds.
type packer struct {
	size    int
	overlap int
	sep     string
	// seed computes the carry-over for the next buffer from the buffer
	// just flushed. The default keeps the last overlap bytes.
	seed func(flushed string, overlap int) string
}

func newPacker(cfg Config, sep string) packer {
	return packer{size: cfg.Size, overlap: cfg.Overlap, sep: sep, seed: charTail}
}

// pack returns the trimmed, non-empty chunks produced from units.
// The flush check counts the joining separator, since it becomes part of
// the buffer once the unit is appended.
func (p packer) pack(units []string) []string {
	var chunks []string
	var buf string
	for _, unit := range units {
		if buf != "" && len(buf)+len(p.sep)+len(unit) >= p.size {
			if trimmed := strings.TrimSpace(buf); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			if p.overlap > 0 {
				buf = p.seed(buf, p.overlap)
			} else {
				buf = ""
			}
		}
		switch {
		case buf == "":
			buf = unit
		default:
			buf += p.sep + unit
		}
	}
	if trimmed := strings.TrimSpace(buf); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// charTail keeps the last overlap bytes of the flushed buffer.
func charTail(flushed string, overlap int) string {
	if len(flushed) <= overlap {
		return flushed
	}
	return flushed[len(flushed)-overlap:]
}

// lineTail keeps trailing whole lines whose combined length stays under
// the overlap budget. Used for line packing, where carrying a partial
// line would split a unit.
func lineTail(flushed string, overlap int) string {
	lines := strings.Split(flushed, "\n")
	total := 0
	keep := 0
	for i := len(lines) - 1; i >= 0; i-- {
		if total+len(lines[i]) >= overlap {
			break
		}
		total += len(lines[i])
		keep++
	}
	return strings.Join(lines[len(lines)-keep:], "\n")
}
