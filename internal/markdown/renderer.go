// Package markdown converts post and project bodies into HTML.
//
// Two trust levels exist. Dangerous trust keeps raw HTML and links with any
// URL scheme exactly as written, which is what locally authored posts rely on
// for embeds. Hardened trust escapes raw HTML so it shows up as text and drops
// links whose scheme goldmark considers dangerous.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Trust selects how much of the author's raw HTML survives rendering.
type Trust int

const (
	TrustHardened Trust = iota
	TrustDangerous
)

// String returns the configuration name of the trust level.
func (t Trust) String() string {
	switch t {
	case TrustHardened:
		return "hardened"
	case TrustDangerous:
		return "dangerous"
	default:
		return "unknown"
	}
}

// ParseTrust parses "hardened" or "dangerous".
func ParseTrust(name string) (Trust, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hardened":
		return TrustHardened, nil
	case "dangerous":
		return TrustDangerous, nil
	default:
		return TrustHardened, fmt.Errorf("unknown trust level %q", name)
	}
}

// Renderer holds one goldmark engine per trust level. Engines are configured
// once and are safe for concurrent Convert calls.
type Renderer struct {
	engines map[Trust]goldmark.Markdown
}

// NewRenderer builds a renderer with GFM and footnotes enabled for both
// trust levels.
func NewRenderer() *Renderer {
	return &Renderer{
		engines: map[Trust]goldmark.Markdown{
			TrustHardened:  newEngine(TrustHardened),
			TrustDangerous: newEngine(TrustDangerous),
		},
	}
}

// Render converts Markdown source to HTML under the given trust level.
func (r *Renderer) Render(source []byte, trust Trust) (string, error) {
	engine, ok := r.engines[trust]
	if !ok {
		return "", fmt.Errorf("markdown render: unknown trust level %d", trust)
	}

	var buf bytes.Buffer
	if err := engine.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

func newEngine(trust Trust) goldmark.Markdown {
	rendererOptions := []renderer.Option{}

	switch trust {
	case TrustDangerous:
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	default:
		// Lower value wins over the stock html renderer at priority 1000.
		rendererOptions = append(rendererOptions,
			renderer.WithNodeRenderers(util.Prioritized(&escapedHTMLRenderer{}, 100)))
	}

	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithRendererOptions(rendererOptions...),
	)
}

// escapedHTMLRenderer prints raw HTML blocks and inline HTML as escaped text
// instead of omitting them.
type escapedHTMLRenderer struct{}

func (r *escapedHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
}

func (r *escapedHTMLRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.HTMLBlock)
	if entering {
		_, _ = w.WriteString("<p>")
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			_, _ = w.Write(util.EscapeHTML(line.Value(source)))
		}
		return ast.WalkContinue, nil
	}

	if n.HasClosure() {
		closure := n.ClosureLine
		_, _ = w.Write(util.EscapeHTML(closure.Value(source)))
	}
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}

func (r *escapedHTMLRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.RawHTML)
	for i := 0; i < n.Segments.Len(); i++ {
		segment := n.Segments.At(i)
		_, _ = w.Write(util.EscapeHTML(segment.Value(source)))
	}
	return ast.WalkSkipChildren, nil
}
