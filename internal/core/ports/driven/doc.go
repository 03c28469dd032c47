// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentLoader: Reads text documents from a source directory
//   - Splitter: Cuts document text into overlapping chunks
//   - EmbeddingService: Maps text to a fixed-size vector
//   - VectorStore: Persists (id, text, vector) and answers similarity queries
//   - ChatService: Sends a prompt to a chat completion model
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - IngestRunStore: Ingest history. Without it, status cannot report the last run.
//   - PromptStore: User-editable prompts. Without it, embedded defaults are used.
//   - ChangeNotifier: Directory change events, used only by watch mode.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or postprocessor package
package driven
