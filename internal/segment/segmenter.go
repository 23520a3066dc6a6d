// Package segment splits raw markdown-like text into an ordered block
// sequence: headings, paragraphs, list items and fenced code blocks.
// Blank lines are separators, not blocks.
package segment

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/xxxsen/mdld/internal/model"
)

// Segment parses raw text and returns the flat block sequence. Each
// block carries its tree path: top-level blocks get a single index,
// list items append their position inside the enclosing list. The
// function is pure and never fails; unrecognized markup degrades to
// paragraphs.
func Segment(raw string) []model.Block {
	source := []byte(raw)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var blocks []model.Block
	index := 0
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		blocks = appendNode(blocks, node, source, []int{index})
		index++
	}
	return blocks
}

func appendNode(blocks []model.Block, node ast.Node, source []byte, path []int) []model.Block {
	switch n := node.(type) {
	case *ast.Heading:
		blocks = append(blocks, model.Block{
			Type:  model.BlockHeading,
			Path:  clonePath(path),
			Text:  string(n.Text(source)),
			Attrs: map[string]string{"level": strconv.Itoa(n.Level)},
		})
	case *ast.FencedCodeBlock:
		attrs := map[string]string{}
		if lang := string(n.Language(source)); lang != "" {
			attrs["language"] = lang
		}
		blocks = append(blocks, model.Block{
			Type:  model.BlockCode,
			Path:  clonePath(path),
			Text:  strings.TrimRight(rawLines(n, source), "\n"),
			Attrs: attrs,
		})
	case *ast.List:
		item := 0
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			blocks = appendListItem(blocks, child, source, append(clonePath(path), item))
			item++
		}
	default:
		txt := strings.TrimRight(rawLines(node, source), "\n")
		if txt == "" {
			return blocks
		}
		blocks = append(blocks, model.Block{
			Type: model.BlockParagraph,
			Path: clonePath(path),
			Text: txt,
		})
	}
	return blocks
}

func appendListItem(blocks []model.Block, item ast.Node, source []byte, path []int) []model.Block {
	var textParts []string
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if _, ok := child.(*ast.List); ok {
			continue
		}
		if part := strings.TrimRight(rawLines(child, source), "\n"); part != "" {
			textParts = append(textParts, part)
		}
	}
	txt := strings.TrimSpace(strings.Join(textParts, "\n"))
	block := model.Block{
		Type: model.BlockListItem,
		Path: clonePath(path),
		Text: txt,
	}
	if checked, rest, ok := splitTaskMarker(txt); ok {
		block.Text = rest
		block.Attrs = map[string]string{"task": "true", "checked": checked}
	}
	blocks = append(blocks, block)

	nested := 0
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		list, ok := child.(*ast.List)
		if !ok {
			continue
		}
		for sub := list.FirstChild(); sub != nil; sub = sub.NextSibling() {
			blocks = appendListItem(blocks, sub, source, append(clonePath(path), nested))
			nested++
		}
	}
	return blocks
}

// splitTaskMarker recognizes task-list items of the form "[ ] text"
// and "[x] text" after the list marker has been consumed.
func splitTaskMarker(txt string) (checked, rest string, ok bool) {
	switch {
	case strings.HasPrefix(txt, "[ ] "):
		return "false", strings.TrimSpace(txt[4:]), true
	case strings.HasPrefix(txt, "[x] "), strings.HasPrefix(txt, "[X] "):
		return "true", strings.TrimSpace(txt[4:]), true
	case txt == "[ ]":
		return "false", "", true
	case txt == "[x]", txt == "[X]":
		return "true", "", true
	}
	return "", "", false
}

// rawLines returns the source text a node spans. Container nodes have
// no line segments of their own, so their children are concatenated.
func rawLines(node ast.Node, source []byte) string {
	if node.Lines().Len() == 0 && node.HasChildren() {
		var sb strings.Builder
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			sb.WriteString(rawLines(child, source))
		}
		return sb.String()
	}
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(source))
	}
	return sb.String()
}

func clonePath(path []int) []int {
	out := make([]int, len(path))
	copy(out, path)
	return out
}
