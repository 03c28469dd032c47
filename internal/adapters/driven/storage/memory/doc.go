// Package memory provides in-process implementations of the driven store
// ports. Nothing is persisted; they back tests and the "memory" store
// backend.
package memory
