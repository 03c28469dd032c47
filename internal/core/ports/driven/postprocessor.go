package driven

// Splitter cuts text into ordered, overlapping chunks.
// Implementations are pure: the same input always yields the same output.
type Splitter interface {
	// Name returns the splitter name for logging.
	Name() string

	// Split returns the chunk texts of text. Empty text yields no chunks.
	Split(text string) ([]string, error)
}
