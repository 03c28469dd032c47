// Package connectors holds the document sources naiverag can ingest from.
// The filesystem connector loads the .txt files of a flat directory and
// watches it for changes.
package connectors
