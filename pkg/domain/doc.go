/*
Package domain contains the core document model of the Formwork form designer.

It defines the entities a user composes on the designer canvas and the locator used to
address any ordered child list inside that structure. The package is kept pure and free of
I/O, following the same hexagonal layout as the rest of the module.

# Key Entities

  - Component: one node of the form (button, section, accordion, ...), with geometry,
    an open property bag and owned children.
  - Slot: an entry of a kind-specific nested collection (accordion panel, stepper step, tab).
  - ContainerTarget: a tagged locator naming one addressable child list.
  - Definition: the serialization unit exchanged at the load/save boundary.
  - DocumentDiff: a compact description of what changed between two definitions.
*/
package domain
