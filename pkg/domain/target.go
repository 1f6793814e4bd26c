package domain

import "fmt"

// TargetKind discriminates the variants of ContainerTarget.
type TargetKind string

const (
	TargetRoot           TargetKind = "root"
	TargetChildren       TargetKind = "children"
	TargetAccordionPanel TargetKind = "accordionPanel"
	TargetStep           TargetKind = "multiInstanceStep"
	TargetTab            TargetKind = "tabPanel"
	TargetGridColumn     TargetKind = "gridColumn"
)

// ContainerTarget locates one addressable ordered child list of a document at a point in time.
// It is a locator, not stored data: it may stop resolving after a structural edit.
//
// The zero value addresses the root list.
type ContainerTarget struct {
	Kind        TargetKind `json:"type" mapstructure:"type"`
	ComponentID string     `json:"componentId,omitempty" mapstructure:"componentId"`
	SlotID      string     `json:"slotId,omitempty" mapstructure:"slotId"`
	Column      int        `json:"column,omitempty" mapstructure:"column"`
}

// Root addresses the document's top-level list.
func Root() ContainerTarget {
	return ContainerTarget{Kind: TargetRoot}
}

// ChildrenOf addresses the plain children list of a component.
func ChildrenOf(componentID string) ContainerTarget {
	return ContainerTarget{Kind: TargetChildren, ComponentID: componentID}
}

// AccordionPanel addresses the children of one accordion panel.
func AccordionPanel(componentID, panelID string) ContainerTarget {
	return ContainerTarget{Kind: TargetAccordionPanel, ComponentID: componentID, SlotID: panelID}
}

// StepOf addresses the children of one stepper step.
func StepOf(componentID, stepID string) ContainerTarget {
	return ContainerTarget{Kind: TargetStep, ComponentID: componentID, SlotID: stepID}
}

// TabPanel addresses the children of one tab.
func TabPanel(componentID, tabID string) ContainerTarget {
	return ContainerTarget{Kind: TargetTab, ComponentID: componentID, SlotID: tabID}
}

// GridColumn addresses the children of a Section tagged with the given column.
func GridColumn(componentID string, column int) ContainerTarget {
	return ContainerTarget{Kind: TargetGridColumn, ComponentID: componentID, Column: column}
}

// IsRoot reports whether t addresses the top-level list.
func (t ContainerTarget) IsRoot() bool {
	return t.Kind == TargetRoot || t.Kind == ""
}

// IsSlot reports whether t addresses a panel, step or tab.
func (t ContainerTarget) IsSlot() bool {
	switch t.Kind {
	case TargetAccordionPanel, TargetStep, TargetTab:
		return true
	}
	return false
}

// SlotKind returns the component kind that owns the slot variant of t.
func (t ContainerTarget) SlotKind() Kind {
	switch t.Kind {
	case TargetAccordionPanel:
		return KindAccordion
	case TargetStep:
		return KindStepper
	case TargetTab:
		return KindTabs
	}
	return ""
}

// Key returns a stable identity usable as a map key for grouping siblings.
func (t ContainerTarget) Key() string {
	switch {
	case t.IsRoot():
		return string(TargetRoot)
	case t.Kind == TargetChildren:
		return fmt.Sprintf("%s:%s", t.Kind, t.ComponentID)
	case t.Kind == TargetGridColumn:
		return fmt.Sprintf("%s:%s:%d", t.Kind, t.ComponentID, t.Column)
	default:
		return fmt.Sprintf("%s:%s:%s", t.Kind, t.ComponentID, t.SlotID)
	}
}

func (t ContainerTarget) String() string {
	return t.Key()
}

// SlotTarget returns the target addressing slot slotID of a component of the given kind.
func SlotTarget(kind Kind, componentID, slotID string) (ContainerTarget, bool) {
	switch kind {
	case KindAccordion:
		return AccordionPanel(componentID, slotID), true
	case KindStepper:
		return StepOf(componentID, slotID), true
	case KindTabs:
		return TabPanel(componentID, slotID), true
	}
	return ContainerTarget{}, false
}
