package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Markdown converts a review body to HTML. Fenced code blocks are highlighted
// with the lexer named by their info string.
func (r *Renderer) Markdown(body string) (string, error) {
	rendererOpts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{parent: r}, 200)),
	}
	if !r.sanitize {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(rendererOpts...),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// codeBlockRenderer overrides goldmark's fenced code block output
type codeBlockRenderer struct {
	parent *Renderer
}

func (c *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, c.renderFencedCodeBlock)
}

func (c *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	tag := ""
	if n.Info != nil {
		tag = string(n.Language(source))
	}

	lexer := lexerForTag(tag)
	if lexer == nil {
		// unknown or missing tag: plain escaped block, like goldmark's default
		_, _ = w.WriteString("<pre><code")
		if tag != "" {
			_, _ = w.WriteString(` class="language-`)
			_, _ = w.Write(util.EscapeHTML([]byte(tag)))
			_, _ = w.WriteString(`"`)
		}
		_, _ = w.WriteString(">")
		_, _ = w.Write(util.EscapeHTML(code.Bytes()))
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkSkipChildren, nil
	}

	_, _ = w.WriteString(`<pre class="chroma"><code class="language-`)
	_, _ = w.Write(util.EscapeHTML([]byte(tag)))
	_, _ = w.WriteString(`">`)
	if err := c.parent.highlightInto(w, code.String(), lexer); err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}
