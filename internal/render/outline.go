// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Outline summarizes the structure of a rendered markdown document.
type Outline struct {
	Headings []string `json:"headings" yaml:"headings"`
	Images   []string `json:"images" yaml:"images"`
	Breaks   int      `json:"breaks" yaml:"breaks"`
}

// ParseOutline parses markdown and collects its level-one headings, image
// destinations and thematic breaks in document order.
func ParseOutline(markdown []byte) Outline {
	out := Outline{}
	doc := goldmark.DefaultParser().Parse(text.NewReader(markdown))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 {
				out.Headings = append(out.Headings, string(node.Text(markdown)))
			}
		case *ast.Image:
			out.Images = append(out.Images, string(node.Destination))
		case *ast.ThematicBreak:
			out.Breaks++
		}
		return ast.WalkContinue, nil
	})
	return out
}
