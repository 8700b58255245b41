package coordinator

import "ratesvc/internal/model"

// Source tells where a Result's table came from.
type Source string

// Result sources.
const (
	// SourceNetwork is a table fetched by this request's flight.
	SourceNetwork Source = "network"
	// SourceCache is a table already fresh enough before any fetch.
	SourceCache Source = "cache"
	// SourceFallback is the last known table returned when waiting was abandoned or throttled.
	SourceFallback Source = "fallback"
	// SourceNone means no data exists yet.
	SourceNone Source = "none"
)

// Result is the outcome of EnsureFresh.
type Result struct {
	Table  *model.RateTable
	Source Source
}

// HasData reports whether the result carries a table.
func (r Result) HasData() bool { return r.Table != nil }
