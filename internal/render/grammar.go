package render

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Grammar is a syntax highlighting definition selected by language label
type Grammar int

const (
	// GrammarNone is the fallback for any language without a mapping; text is
	// escaped but not highlighted.
	GrammarNone Grammar = iota
	GrammarC
	GrammarCPP
	GrammarJava
	GrammarJavaScript
	GrammarPython
)

// GrammarFor maps a target language code to its grammar. Unmapped codes
// deliberately resolve to GrammarNone.
func GrammarFor(language string) Grammar {
	switch language {
	case "c":
		return GrammarC
	case "cpp":
		return GrammarCPP
	case "java":
		return GrammarJava
	case "js":
		return GrammarJavaScript
	case "python":
		return GrammarPython
	default:
		return GrammarNone
	}
}

// String returns the grammar name used in the language-<name> class
func (g Grammar) String() string {
	switch g {
	case GrammarC:
		return "c"
	case GrammarCPP:
		return "cpp"
	case GrammarJava:
		return "java"
	case GrammarJavaScript:
		return "javascript"
	case GrammarPython:
		return "python"
	default:
		return "none"
	}
}

// Lexer returns the chroma lexer for the grammar
func (g Grammar) Lexer() chroma.Lexer {
	if g == GrammarNone {
		return lexers.Fallback
	}
	if l := lexers.Get(g.String()); l != nil {
		return l
	}
	return lexers.Fallback
}

// lexerForTag resolves a fenced code block tag such as "go" or "js"
func lexerForTag(tag string) chroma.Lexer {
	if tag == "" {
		return nil
	}
	return lexers.Get(tag)
}
