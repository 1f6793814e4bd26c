package domain

import (
	"reflect"
	"sort"
)

// DocumentDiff represents the changes between two definitions.
// It is designed to be serialized to JSON for partial updates on the client.
type DocumentDiff struct {
	// FormID is always present to identify the target.
	FormID string `json:"form_id"`

	// Command names the command that produced the change, when known.
	Command string `json:"command,omitempty"`

	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`

	// Changed lists components present in both definitions whose own fields, location
	// or direct child order differ.
	Changed []string `json:"changed,omitempty"`

	CanvasSize *Size    `json:"canvas_size,omitempty"`
	Zoom       *float64 `json:"zoom,omitempty"`
}

// Empty reports whether the diff carries no change.
func (d *DocumentDiff) Empty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 &&
		d.CanvasSize == nil && d.Zoom == nil)
}

type slotRecord struct {
	ID       string
	Title    string
	Children []string
}

type componentRecord struct {
	Parent     string
	Kind       Kind
	Position   Point
	Size       Size
	Properties map[string]any
	Column     *int
	Locked     bool
	Hidden     bool
	Children   []string
	Slots      []slotRecord
}

// Diff calculates the difference between oldDef and newDef.
// If oldDef is nil, every component of newDef is reported as added (initial load).
// It returns nil when nothing changed.
func Diff(formID string, oldDef, newDef *Definition) *DocumentDiff {
	if newDef == nil {
		return nil
	}

	diff := &DocumentDiff{FormID: formID}

	oldRecords := map[string]componentRecord{}
	if oldDef != nil {
		flatten(oldDef.Components, "", oldRecords)
		if oldDef.CanvasSize != newDef.CanvasSize {
			diff.CanvasSize = &newDef.CanvasSize
		}
		if oldDef.Zoom != newDef.Zoom {
			diff.Zoom = &newDef.Zoom
		}
	} else {
		diff.CanvasSize = &newDef.CanvasSize
		diff.Zoom = &newDef.Zoom
	}
	newRecords := map[string]componentRecord{}
	flatten(newDef.Components, "", newRecords)

	for id, rec := range newRecords {
		prev, ok := oldRecords[id]
		switch {
		case !ok:
			diff.Added = append(diff.Added, id)
		case !reflect.DeepEqual(prev, rec):
			diff.Changed = append(diff.Changed, id)
		}
	}
	for id := range oldRecords {
		if _, ok := newRecords[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)

	if diff.Empty() {
		return nil
	}
	return diff
}

func flatten(forest []*Component, parent string, out map[string]componentRecord) {
	for _, c := range forest {
		rec := componentRecord{
			Parent:     parent,
			Kind:       c.Kind,
			Position:   c.Position,
			Size:       c.Size,
			Properties: c.Properties,
			Column:     c.Column,
			Locked:     c.Locked,
			Hidden:     c.Hidden,
			Children:   ids(c.Children),
		}
		for _, s := range c.Slots() {
			rec.Slots = append(rec.Slots, slotRecord{ID: s.ID, Title: s.Title, Children: ids(s.Children)})
			flatten(s.Children, c.ID+"/"+s.ID, out)
		}
		out[c.ID] = rec
		flatten(c.Children, c.ID, out)
	}
}

func ids(forest []*Component) []string {
	if len(forest) == 0 {
		return nil
	}
	out := make([]string, len(forest))
	for i, c := range forest {
		out[i] = c.ID
	}
	return out
}
