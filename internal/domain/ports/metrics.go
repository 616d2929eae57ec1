package ports

import "time"

// ResolverMetrics receives resolver observations. Implementations must
// accept calls on a nil receiver.
type ResolverMetrics interface {
	EventCreated(factType string)
	PreferredPromoted()
	PreferredConflict()
	ObserveResolve(storage string, d time.Duration)
	FootnoteAssigned()
}
