// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingest pipeline is Indexer (load, split, embed, upsert); the query
// pipeline is Retriever followed by Answerer.
package services
