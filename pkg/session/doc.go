/*
Package session manages live designer documents keyed by form ID.

A Manager keeps one designer.Store per open form and serializes every command on that
form behind a per-form lock, optionally coordinated across replicas with a
ports.DistributedLocker. Documents are read from and written to a ports.DefinitionStore,
either explicitly with Save or after every document change when autosave is enabled.
*/
package session
