/*
Package formwork is a document model for visual form designers.

A form is a forest of components (buttons, inputs, sections, tabbed pages, steppers,
accordions, containers) laid out on a canvas. Containers nest children; sections split
their children into grid columns; tabbed pages, steppers and accordions own ordered
slots that each hold their own list of children.

# Architecture

The module follows a hexagonal layout:

  - pkg/tree: pure, path-copying operations over component forests (find, locate,
    extract, insert, replace, clone).
  - pkg/designer: the document store. Every editing command (add, move, align,
    distribute, group, reorder, drag and drop, slot editing) is a method that either
    applies and notifies listeners or leaves the document untouched.
  - pkg/session: open forms keyed by ID, with per-form locking, autosave and
    optional distributed locks.
  - pkg/adapters: persistence (memory, file, Redis), template libraries (Loam),
    HTTP and MCP transports.

# Usage

	store := designer.New()
	id := store.Add(&domain.Component{Kind: domain.KindButton}, domain.Root(), tree.End)
	store.Select(id)
	store.Align(designer.AlignLeft)
	def := store.Save()

Saved definitions are plain JSON. The legacy flat format (a bare component list with
parentId references) is accepted on load.
*/
package formwork
