package render

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/alecthomas/chroma/v2/styles"
)

const defaultStyle = "github"

// Renderer turns converted code and review bodies into HTML
type Renderer struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
	sanitize  bool
}

// Option configures a Renderer
type Option func(*Renderer)

// WithStyle selects a chroma style by name; unknown names keep the default
func WithStyle(name string) Option {
	return func(r *Renderer) {
		if s := styles.Get(name); s != nil {
			r.style = s
		}
	}
}

// WithSanitize drops raw HTML embedded in review markdown instead of passing
// it through to the output.
func WithSanitize() Option {
	return func(r *Renderer) {
		r.sanitize = true
	}
}

// New creates a Renderer
func New(opts ...Option) *Renderer {
	r := &Renderer{
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
		style: styles.Get(defaultStyle),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HighlightCode renders code with the given grammar. The code text is kept
// verbatim inside a language-tagged code element.
func (r *Renderer) HighlightCode(code string, g Grammar) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<pre class="chroma"><code class="language-%s">`, g.String())
	if err := r.highlightInto(&buf, code, g.Lexer()); err != nil {
		return "", err
	}
	buf.WriteString("</code></pre>")
	return buf.String(), nil
}

// HighlightGuess highlights text whose language is unknown, letting chroma
// analyse the content. Used for the review editor's mirror.
func (r *Renderer) HighlightGuess(code string) (string, error) {
	lexer := lexers.Analyse(code)
	name := "none"
	if lexer == nil {
		lexer = lexers.Fallback
	} else {
		name = lexer.Config().Name
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<pre class="chroma"><code class="language-%s">`, html.EscapeString(name))
	if err := r.highlightInto(&buf, code, lexer); err != nil {
		return "", err
	}
	buf.WriteString("</code></pre>")
	return buf.String(), nil
}

func (r *Renderer) highlightInto(w io.Writer, code string, lexer chroma.Lexer) error {
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	if err := r.formatter.Format(w, r.style, iterator); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	return nil
}

// StyleCSS writes the stylesheet matching the class names emitted above
func (r *Renderer) StyleCSS(w io.Writer) error {
	return r.formatter.WriteCSS(w, r.style)
}

// Terminal writes code highlighted with ANSI escapes for a 256 colour terminal
func Terminal(w io.Writer, code, lexer string) error {
	if lexer == "" || lexer == GrammarNone.String() {
		lexer = "plaintext"
	}
	return quick.Highlight(w, code, lexer, "terminal256", "monokai")
}
