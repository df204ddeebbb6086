package chunker

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Language identifies which boundary-pattern set applies to a file.
type Language string

// Known language tags. LangGeneric is used for anything unmapped.
const (
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangCCpp       Language = "c_cpp"
	LangJavaScript Language = "javascript"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangGeneric    Language = "generic"
)

// extToLang maps file extensions to language tags.
var extToLang = map[string]Language{
	".py":    LangPython,
	".java":  LangJava,
	".c":     LangCCpp,
	".cpp":   LangCCpp,
	".cc":    LangCCpp,
	".h":     LangCCpp,
	".hpp":   LangCCpp,
	".js":    LangJavaScript,
	".jsx":   LangJavaScript,
	".ts":    LangJavaScript,
	".tsx":   LangJavaScript,
	".go":    LangGo,
	".rs":    LangRust,
	".cs":    LangCCpp,
	".swift": LangCCpp,
	".kt":    LangJava,
}

// Classify derives the language tag from a file path's extension.
// Pure: the same extension always yields the same tag.
func Classify(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extToLang[ext]; ok {
		return lang
	}
	return LangGeneric
}

// Boundary patterns mark positions that typically start a new top-level
// construct. They are heuristics, not grammar: a match means "a split
// here is probably safe", nothing more.
var boundaryPatterns = map[Language][]*regexp.Regexp{
	LangPython: {
		regexp.MustCompile(`\n\s*(def|class)\s+\w+`),
		regexp.MustCompile(`\n\s*(def|class)\s+\w+\s*\(.*\):`),
	},
	LangJava: {
		regexp.MustCompile(`\n\s*(public|private|protected)?\s*(static)?\s*(class|interface|enum)\s+\w+`),
		regexp.MustCompile(`\n\s*@.*\n\s*(public|private|protected)?\s*(static)?\s*\w+\s+\w+\s*\(.*\)`),
	},
	LangCCpp: {
		regexp.MustCompile(`\n\s*(struct|class|interface|enum)\s+\w+`),
		regexp.MustCompile(`\n\s*(extern\s+)?"[C]"?\s*#include`),
	},
	LangJavaScript: {
		regexp.MustCompile(`\n\s*(function|const|let|var)\s+\w+\s*=\s*(async\s*)?\(`),
		regexp.MustCompile(`\n\s*(export\s+)?(default\s+)?class\s+\w+`),
		regexp.MustCompile(`\n\s*(export\s+)?(async\s+)?function\s+\w+\s*\(`),
	},
	LangGo: {
		regexp.MustCompile(`\n\s*(func|type|interface)\s+\w+`),
	},
	LangRust: {
		regexp.MustCompile(`\n\s*(fn|struct|enum|trait|impl)\s+\w+`),
	},
}

// genericPatterns is the fallback list: a line opening a brace block, a
// lone closing brace, or a visibility/modifier keyword at line start.
var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\n\s*[a-zA-Z_]\w*\s*[a-zA-Z_]\w*\s*\([^)]*\)[^{]*\{`),
	regexp.MustCompile(`\n\s*\}\s*\n`),
	regexp.MustCompile(`\n\s*(public|private|protected|static|final|abstract)\s+`),
}

// patternsFor returns the boundary pattern list for a language tag,
// falling back to the generic list.
func patternsFor(lang Language) []*regexp.Regexp {
	if pats, ok := boundaryPatterns[lang]; ok && lang != LangGeneric {
		return pats
	}
	return genericPatterns
}
