package parser

// FallbackExtractor is the interface to a higher-cost extraction service the
// gate escalates to (e.g. an LLM behind an HTTP API). The core only decides
// when escalation is warranted; the implementation lives with the caller.
type FallbackExtractor interface {
	// Extract re-extracts a candidate record from the raw message
	Extract(subject, body, kind string) (*Candidate, error)

	// HealthCheck verifies the fallback service is available
	HealthCheck() error

	// IsEnabled returns whether fallback extraction is configured
	IsEnabled() bool
}

// NoOpFallbackExtractor is a no-operation implementation
type NoOpFallbackExtractor struct{}

// NewNoOpFallbackExtractor creates a no-op fallback extractor
func NewNoOpFallbackExtractor() FallbackExtractor {
	return &NoOpFallbackExtractor{}
}

// Extract returns an empty candidate
func (n *NoOpFallbackExtractor) Extract(subject, body, kind string) (*Candidate, error) {
	return &Candidate{Kind: kind}, nil
}

// HealthCheck always returns nil
func (n *NoOpFallbackExtractor) HealthCheck() error {
	return nil
}

// IsEnabled returns false
func (n *NoOpFallbackExtractor) IsEnabled() bool {
	return false
}
