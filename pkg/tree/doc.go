/*
Package tree implements the pure operations over an ordered forest of components.

Every function takes a forest and returns either a read-only result or a new forest; inputs
are never mutated. Unchanged subtrees are shared between the input and the output, which is
safe because components are treated as immutable once placed in a forest.

Lookups report "not found" through a boolean. Mutations addressed at an id or target that does
not resolve return the input unchanged, so callers can pipeline operations without guards.

Nested collections (accordion panels, stepper steps, tabs) and Section grid columns are
addressed uniformly through domain.ContainerTarget.
*/
package tree
