package goldmark

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/ragchat"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

type styles struct {
	title  lipgloss.Style // level 1 heading
	head   lipgloss.Style // level 2+ heading
	bold   lipgloss.Style
	italic lipgloss.Style
	strike lipgloss.Style
	code   lipgloss.Style // inline code
	link   lipgloss.Style
	muted  lipgloss.Style
}

type renderer struct {
	src []byte
	st  styles
}

func newRenderer(src []byte, theme ragchat.Theme) *renderer {
	accent := ansiColor(theme.Accent)
	return &renderer{
		src: src,
		st: styles{
			title:  lipgloss.NewStyle().Foreground(accent).Bold(true).Underline(true),
			head:   lipgloss.NewStyle().Foreground(accent).Bold(true),
			bold:   lipgloss.NewStyle().Bold(true),
			italic: lipgloss.NewStyle().Italic(true),
			strike: lipgloss.NewStyle().Strikethrough(true),
			code:   lipgloss.NewStyle().Foreground(accent).Background(ansiColor(theme.CodeBg)),
			link:   lipgloss.NewStyle().Underline(true),
			muted:  lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		},
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) document(width int) string {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(r.src))
	return r.children(doc, width)
}

// children renders each block child of n and separates them with a blank
// line.
func (r *renderer) children(n ast.Node, width int) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s := r.block(c, width); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (r *renderer) block(n ast.Node, width int) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return wrap(r.inline(n), width)
	case *ast.Heading:
		style := r.st.head
		if n.Level == 1 {
			style = r.st.title
		}
		return wrap(style.Render(r.inline(n)), width)
	case *ast.FencedCodeBlock:
		return r.code(n, string(n.Language(r.src)))
	case *ast.CodeBlock:
		return r.code(n, "")
	case *ast.Blockquote:
		return r.quote(n, width)
	case *ast.List:
		return r.list(n, width, 0)
	case *ast.ThematicBreak:
		return r.st.muted.Render(strings.Repeat("─", min(width, 40)))
	case *ast.HTMLBlock:
		return strings.TrimRight(r.raw(n.Lines()), "\n")
	case *east.Table:
		return r.table(n)
	default:
		return r.children(n, width)
	}
}

// code renders a code block verbatim behind a gutter, with an optional
// language label above it.
func (r *renderer) code(n ast.Node, lang string) string {
	var b strings.Builder
	if lang != "" {
		b.WriteString(r.st.muted.Render(lang))
		b.WriteByte('\n')
	}
	gutter := r.st.muted.Render("│") + " "
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		b.WriteString(gutter)
		b.WriteString(strings.TrimRight(string(seg.Value(r.src)), "\n"))
		if i < lines.Len()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (r *renderer) quote(n *ast.Blockquote, width int) string {
	inner := r.children(n, max(width-2, 10))
	bar := r.st.muted.Render("▎") + " "
	lines := strings.Split(inner, "\n")
	for i, l := range lines {
		lines[i] = bar + l
	}
	return strings.Join(lines, "\n")
}

func (r *renderer) list(n *ast.List, width, depth int) string {
	var items []string
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		items = append(items, r.item(item, marker, width, depth))
	}
	sep := "\n"
	if !n.IsTight {
		sep = "\n\n"
	}
	return strings.Join(items, sep)
}

// item renders one list entry. The first line carries the marker; every
// following line, nested lists included, is indented to the marker's width.
func (r *renderer) item(item *ast.ListItem, marker string, width, depth int) string {
	indent := strings.Repeat("  ", depth)
	pad := indent + strings.Repeat(" ", ansi.StringWidth(marker))
	inner := max(width-len(pad), 10)

	var parts []string
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.List:
			parts = append(parts, r.list(c, width, depth+1))
		case *ast.Paragraph, *ast.TextBlock:
			parts = append(parts, indentLines(wrap(r.inline(c), inner), pad))
		default:
			parts = append(parts, indentLines(r.block(c, inner), pad))
		}
	}
	out := strings.Join(parts, "\n")
	// Swap the padding on the first line for the marker.
	if rest, ok := strings.CutPrefix(out, pad); ok {
		return indent + marker + rest
	}
	return indent + marker + out
}

func (r *renderer) table(t *east.Table) string {
	var rows [][]string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, r.inline(cell))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	widths := make([]int, cols)
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], ansi.StringWidth(c))
		}
	}

	sep := r.st.muted.Render(" │ ")
	var b strings.Builder
	for ri, row := range rows {
		for i := range cols {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if ri == 0 {
				cell = r.st.bold.Render(cell)
			}
			b.WriteString(pad(cell, widths[i], alignment(t, i)))
			if i < cols-1 {
				b.WriteString(sep)
			}
		}
		if ri == 0 {
			b.WriteByte('\n')
			var rule []string
			for _, w := range widths {
				rule = append(rule, strings.Repeat("─", w))
			}
			b.WriteString(r.st.muted.Render(strings.Join(rule, "─┼─")))
		}
		if ri < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func alignment(t *east.Table, col int) east.Alignment {
	if col < len(t.Alignments) {
		return t.Alignments[col]
	}
	return east.AlignNone
}

func pad(s string, width int, align east.Alignment) string {
	gap := width - ansi.StringWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case east.AlignRight:
		return strings.Repeat(" ", gap) + s
	case east.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// inline renders the inline children of n into a single styled string.
func (r *renderer) inline(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(c, &b)
	}
	return b.String()
}

func (r *renderer) span(n ast.Node, b *strings.Builder) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.src))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.Emphasis:
		if n.Level == 1 {
			b.WriteString(r.st.italic.Render(r.inline(n)))
		} else {
			b.WriteString(r.st.bold.Render(r.inline(n)))
		}
	case *east.Strikethrough:
		b.WriteString(r.st.strike.Render(r.inline(n)))
	case *east.TaskCheckBox:
		if n.IsChecked {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
	case *ast.CodeSpan:
		b.WriteString(r.st.code.Render(r.inline(n)))
	case *ast.Link:
		label := r.inline(n)
		dest := string(n.Destination)
		b.WriteString(r.st.link.Render(label))
		if dest != "" && dest != label {
			b.WriteString(" " + r.st.muted.Render("("+dest+")"))
		}
	case *ast.AutoLink:
		b.WriteString(r.st.link.Render(string(n.URL(r.src))))
	case *ast.Image:
		b.WriteString(r.st.muted.Render("[image: " + r.inline(n) + "]"))
	case *ast.RawHTML:
		b.WriteString(r.raw(n.Segments))
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			r.span(c, b)
		}
	}
}

func (r *renderer) raw(segs *text.Segments) string {
	var b strings.Builder
	for i := range segs.Len() {
		seg := segs.At(i)
		b.Write(seg.Value(r.src))
	}
	return b.String()
}

// wrap word-wraps styled text to width, keeping escape sequences intact.
func wrap(s string, width int) string {
	return ansi.Wordwrap(s, width, "")
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
