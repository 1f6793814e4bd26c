package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/formwork/pkg/domain"
)

// Overlay marks editing state on the rendered forest.
type Overlay struct {
	Selected []string
	Hover    string
}

// GenerateMermaid produces a Mermaid flowchart of a component forest.
// Shapes by role:
// - Flow or absolute containers: (Rounded)
// - Slot-bearing kinds (Accordion, Stepper, Tabs): [[Subroutine]]
// - Panels, steps and tabs: {{Hexagon}}
// - Leaves: [Rectangle]
// Section children are linked with their column; hidden components are dashed.
func GenerateMermaid(forest []*domain.Component, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var hidden []string
	var visit func(c *domain.Component)
	visit = func(c *domain.Component) {
		safeID := sanitizeMermaidID(c.ID)
		opener, closer := shape(c)
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label(c), closer))
		if c.Hidden {
			hidden = append(hidden, safeID)
		}

		for _, child := range c.Children {
			arrow := "-->"
			if child.Column != nil {
				arrow = fmt.Sprintf("-- \"col %d\" -->", *child.Column)
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(child.ID)))
			visit(child)
		}

		for _, slot := range c.Slots() {
			slotID := sanitizeMermaidID(c.ID + "__" + slot.ID)
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, slotID))
			sb.WriteString(fmt.Sprintf("    %s{{\"%s: %s\"}}\n", slotID, slotNoun(c.Kind), quote(slot.Title)))
			for _, child := range slot.Children {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", slotID, sanitizeMermaidID(child.ID)))
				visit(child)
			}
		}
	}
	for _, c := range forest {
		visit(c)
	}

	if len(hidden) == 0 && overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% Styles\n")
	// Black text keeps labels readable on both light and dark themes.
	sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
	sb.WriteString("    classDef hover fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef hidden stroke-dasharray:5 5,opacity:0.5;\n")
	for _, id := range hidden {
		sb.WriteString(fmt.Sprintf("    class %s hidden;\n", id))
	}
	if overlay != nil {
		for _, id := range overlay.Selected {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(id)))
		}
		if overlay.Hover != "" {
			sb.WriteString(fmt.Sprintf("    class %s hover;\n", sanitizeMermaidID(overlay.Hover)))
		}
	}
	return sb.String()
}

func shape(c *domain.Component) (string, string) {
	switch {
	case c.Kind.HasSlots():
		return "[[", "]]"
	case c.Kind == domain.KindContainer, c.Kind == domain.KindSection, c.Kind == domain.KindCard, c.Kind == domain.KindFlex:
		return "(", ")"
	default:
		return "[", "]"
	}
}

func label(c *domain.Component) string {
	out := string(c.Kind)
	if text := Caption(c); text != "" {
		out += ": " + quote(text)
	}
	if c.Locked {
		out += " (locked)"
	}
	return out
}

// Caption returns the first human-readable text property of a component.
func Caption(c *domain.Component) string {
	for _, key := range []string{"label", "title", "text", "placeholder"} {
		if s, ok := c.Properties[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func slotNoun(kind domain.Kind) string {
	switch kind {
	case domain.KindAccordion:
		return "Panel"
	case domain.KindStepper:
		return "Step"
	default:
		return "Tab"
	}
}

func quote(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
