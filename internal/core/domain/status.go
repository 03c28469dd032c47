package domain

// Status summarises the index for display.
type Status struct {
	Backend        StoreBackend
	Location       string
	Entries        int
	EmbeddingModel string
	LLMModel       string

	// Dimensions is 0 when the store does not record it or is empty.
	Dimensions int

	// LastRun is nil when nothing has been ingested yet.
	LastRun *IngestRun
}
