/*
Package designer implements the document store of the form designer.

A Store holds one live document (the component forest, canvas size and zoom) together with
the transient editing state a canvas renderer needs: selection, hover, drag payload, drop
target and snap guides. Every command is a synchronous, atomic transition. A command whose
preconditions are not met (unknown id, too few selected members, locked or flow-laid-out
members) is a silent no-op that leaves the state untouched.

A Store is single-writer and not safe for concurrent use. The session package serializes
access when stores are shared by network adapters.

# Usage

	store := designer.New(designer.WithGrid(designer.GridSettings{Size: 10, Snap: true}))
	id := store.Add(&domain.Component{Kind: domain.KindButton}, domain.Root(), tree.End)
	store.Move(id, domain.Point{X: 42, Y: 17}) // snapped to (40, 20)
	def := store.Save()
*/
package designer
