// Package notebook ties the pieces together: a Workspace holds open
// documents, and each Document owns its text buffer, partition engine and
// pointer registry.
//
// Documents are registered explicitly and live until Close. A document's
// edits are serialized by the document itself; queries may run concurrently
// with each other.
package notebook
