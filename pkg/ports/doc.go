/*
Package ports defines the driven ports (interfaces) for the formwork designer.

These interfaces decouple the document model from external implementations, allowing
hosts to persist forms in memory, on disk or in Redis, and to source templates from
a markdown vault.

# Key Interfaces

  - DefinitionStore: Persists and loads form Definitions by form ID.
  - TemplateLibrary: Lists and fetches reusable component fragments.
  - DistributedLocker: Provides distributed locking for concurrent edits of one form.
*/
package ports
