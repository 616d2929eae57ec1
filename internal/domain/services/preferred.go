package services

import (
	"sort"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// preferredChoice is the outcome of picking the preferred instance among
// the events of one owner and subtype.
type preferredChoice struct {
	event *entities.StandaloneEvent
	// promote is set when no event was flagged and event must be.
	promote bool
	// flagged holds the IDs of every flagged event when more than one is.
	flagged []int64
}

// choosePreferred picks the preferred event: the flagged one when exactly
// one is flagged, otherwise the earliest by (Order, ID) among the flagged
// ones, or among all of them when none is flagged. It returns a zero
// choice for no events.
func choosePreferred(events []entities.StandaloneEvent) preferredChoice {
	if len(events) == 0 {
		return preferredChoice{}
	}
	sorted := make([]entities.StandaloneEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Before(&sorted[j]) })

	var flagged []int
	for i := range sorted {
		if sorted[i].Preferred {
			flagged = append(flagged, i)
		}
	}

	switch len(flagged) {
	case 0:
		ev := sorted[0]
		return preferredChoice{event: &ev, promote: true}
	case 1:
		ev := sorted[flagged[0]]
		return preferredChoice{event: &ev}
	default:
		ev := sorted[flagged[0]]
		ids := make([]int64, len(flagged))
		for i, idx := range flagged {
			ids[i] = sorted[idx].ID
		}
		return preferredChoice{event: &ev, flagged: ids}
	}
}

func eventsOfSubtype(events []entities.StandaloneEvent, sub entities.EventSubtype) []entities.StandaloneEvent {
	var out []entities.StandaloneEvent
	for _, ev := range events {
		if ev.Subtype == sub {
			out = append(out, ev)
		}
	}
	return out
}
