package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips conversational filler and outer markdown code blocks
// so the result is pure Markdown ready for rendering.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ExtractBullets pulls the text of markdown list items out of an LLM reply,
// up to max items. Replies that contain no list fall back to non-empty lines
// with any leading bullet or numbering characters trimmed.
func ExtractBullets(input string, max int) []string {
	source := []byte(CleanMarkdown(input))
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var bullets []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindListItem {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			collectText(c, source, &sb)
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			bullets = append(bullets, s)
		}
		return ast.WalkSkipChildren, nil
	})

	if len(bullets) == 0 {
		for _, line := range strings.Split(string(source), "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimLeft(line, "-*•0123456789. ")
			if line != "" {
				bullets = append(bullets, line)
			}
		}
	}

	if max > 0 && len(bullets) > max {
		bullets = bullets[:max]
	}
	return bullets
}

func collectText(n ast.Node, source []byte, sb *strings.Builder) {
	if t, ok := n.(*ast.Text); ok {
		sb.Write(t.Segment.Value(source))
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collectText(c, source, sb)
	}
}
