package sentence

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options controls how article markup becomes plain text.
type Options struct {
	// ExcludeClass skips every element carrying this class, together with
	// its subtree. It is used to keep the player's own labels out of the
	// text it reads.
	ExcludeClass string

	// BlockPunctuation ends every block element with a sentence break so
	// headings and list items without punctuation become sentences of their
	// own. Closing blocks become ".\n", line breaks become ". ", dot runs
	// collapse to one and whitespace collapses to single spaces.
	BlockPunctuation bool

	// Content lists selectors for the article region, tried in order. A
	// selector is ".class" or a tag name. When none matches, the whole
	// document is read.
	Content []string
}

// ContentSelectors finds the article body on common WordPress themes.
var ContentSelectors = []string{".single-post-body", ".entry-content", ".post-content", "article"}

var (
	dotRun     = regexp.MustCompile(`\.{2,}`)
	spaceRun   = regexp.MustCompile(`[ \t\f\r]+`)
	blankLines = regexp.MustCompile(`\n\s*\n+`)
)

var sentenceBlocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Blockquote: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

var lineBlocks = map[atom.Atom]bool{
	atom.Ul: true, atom.Ol: true, atom.Table: true, atom.Pre: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true, atom.Figure: true,
	atom.Figcaption: true, atom.Hr: true, atom.Td: true, atom.Th: true,
	atom.Nav: true, atom.Main: true, atom.Aside: true, atom.Dl: true, atom.Dt: true,
	atom.Dd: true, atom.Form: true, atom.Address: true,
}

// ExtractText returns the readable text of an HTML fragment. Script and style
// contents are always dropped and character references are decoded.
func ExtractText(fragment string, opts Options) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	root := doc
	for _, sel := range opts.Content {
		if n := find(doc, sel); n != nil {
			root = n
			break
		}
	}

	var b strings.Builder
	walk(&b, root, opts)

	if opts.BlockPunctuation {
		out := dotRun.ReplaceAllString(b.String(), ".")
		return strings.Join(strings.Fields(out), " "), nil
	}

	out := spaceRun.ReplaceAllString(b.String(), " ")
	out = blankLines.ReplaceAllString(out, "\n")
	lines := strings.Split(out, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func walk(b *strings.Builder, n *html.Node, opts Options) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Br:
			if opts.BlockPunctuation {
				b.WriteString(". ")
			} else {
				b.WriteString("\n")
			}
			return
		}
		if opts.ExcludeClass != "" && hasClass(n, opts.ExcludeClass) {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c, opts)
	}

	if n.Type != html.ElementNode {
		return
	}
	switch {
	case sentenceBlocks[n.DataAtom] && opts.BlockPunctuation:
		b.WriteString(".\n")
	case sentenceBlocks[n.DataAtom], lineBlocks[n.DataAtom]:
		b.WriteString("\n")
	}
}

// find returns the first element in document order matching sel.
func find(n *html.Node, sel string) *html.Node {
	if n.Type == html.ElementNode {
		if class, ok := strings.CutPrefix(sel, "."); ok {
			if hasClass(n, class) {
				return n
			}
		} else if n.Data == sel {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := find(c, sel); m != nil {
			return m
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

var markdown = goldmark.New()

// FromMarkdown renders markdown to HTML and extracts its text.
func FromMarkdown(src []byte, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return ExtractText(buf.String(), opts)
}

// RenderMarkdown converts markdown to an HTML fragment.
func RenderMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// MarkdownTitle returns the text of the first heading in src, if any.
func MarkdownTitle(src []byte) string {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title = inlineText(h, src)
		return ast.WalkStop, nil
	})
	return strings.TrimSpace(title)
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
