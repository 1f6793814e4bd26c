package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/formwork/pkg/domain"
)

// GenerateOutline renders a definition as a nested markdown list, one bullet per
// component and per panel, step or tab.
func GenerateOutline(title string, def domain.Definition) string {
	var sb strings.Builder
	if title == "" {
		title = "Form"
	}
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString(fmt.Sprintf("Canvas %s × %s, zoom %s\n\n",
		num(def.CanvasSize.Width), num(def.CanvasSize.Height), num(def.Zoom)))

	if len(def.Components) == 0 {
		sb.WriteString("_No components._\n")
		return sb.String()
	}

	var visit func(c *domain.Component, depth int)
	visit = func(c *domain.Component, depth int) {
		indent := strings.Repeat("  ", depth)
		line := fmt.Sprintf("%s- **%s** `%s`", indent, c.Kind, c.ID)
		if text := Caption(c); text != "" {
			line += " " + text
		}
		var flags []string
		if c.Column != nil {
			flags = append(flags, fmt.Sprintf("column %d", *c.Column))
		}
		if c.Locked {
			flags = append(flags, "locked")
		}
		if c.Hidden {
			flags = append(flags, "hidden")
		}
		if len(flags) > 0 {
			line += " _(" + strings.Join(flags, ", ") + ")_"
		}
		sb.WriteString(line + "\n")

		for _, child := range c.Children {
			visit(child, depth+1)
		}
		for _, slot := range c.Slots() {
			sb.WriteString(fmt.Sprintf("%s  - %s _%s_\n", indent, slotNoun(c.Kind), slot.Title))
			for _, child := range slot.Children {
				visit(child, depth+2)
			}
		}
	}
	for _, c := range def.Components {
		visit(c, 0)
	}
	return sb.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
