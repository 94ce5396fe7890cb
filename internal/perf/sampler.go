package perf

import "context"

// Sampler measures a page in a real browser.
type Sampler interface {
	// Sample loads url and returns the raw measurements.
	Sample(ctx context.Context, url string) (*Sample, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(ctx context.Context, url string) (*Sample, error)

// Sample implements Sampler.
func (f SamplerFunc) Sample(ctx context.Context, url string) (*Sample, error) {
	return f(ctx, url)
}
