package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// factGroup orders the groups of a biography: dated fixed facts and
// names, then events, then notes and flags.
func factGroup(info entities.FactTypeInfo) int {
	switch {
	case info.IsEvent():
		return 1
	case info.Code == entities.FactName || info.Code == entities.FactAltName:
		return 0
	case info.Fields.Date != "" || info.Fields.Place != "":
		return 0
	default:
		return 2
	}
}

// ListFactsForOwner returns every non-empty fact of an owner, fixed facts
// and events merged, without writing anything. Unset flags are skipped.
// Within a group facts are ordered by less, ByDate when nil. For each
// event subtype the preferred instance carries Preferred.
func (s *ResolverService) ListFactsForOwner(ctx context.Context, kind entities.OwnerKind, ownerID int64, less FactLess) ([]*entities.FactHandle, error) {
	if less == nil {
		less = ByDate
	}
	owner, _, err := s.loadOwner(ctx, kind, ownerID, false)
	if err != nil {
		return nil, err
	}

	var facts []*entities.FactHandle
	for _, info := range entities.FactTypesFor(kind) {
		if info.IsEvent() {
			continue
		}
		h, err := s.resolveFor(ctx, info, owner, false, ResolveRequest{FactType: info.Code, OwnerID: ownerID, ReadOnly: true})
		if err != nil {
			return nil, err
		}
		if info.Flag && !entities.ParseFlag(h.Description) {
			continue
		}
		if !h.IsEmpty() {
			facts = append(facts, h)
		}
	}

	if generic, ok := entities.GenericEventCode(kind); ok {
		events, err := s.store.ListEvents(ctx, kind, ownerID)
		if err != nil {
			return nil, fmt.Errorf("listing events of %s %d: %w", kind, ownerID, err)
		}
		chosen := make(map[entities.EventSubtype]int64)
		for _, ev := range events {
			if _, done := chosen[ev.Subtype]; done {
				continue
			}
			if c := choosePreferred(eventsOfSubtype(events, ev.Subtype)); c.event != nil {
				chosen[ev.Subtype] = c.event.ID
			}
		}

		for _, ev := range events {
			code := generic
			if info, ok := entities.MilestoneFor(ev.Subtype); ok && info.Owner == kind {
				code = info.Code
			}
			info, err := entities.LookupFactType(code)
			if err != nil {
				return nil, err
			}
			h, err := s.resolveFor(ctx, info, owner, false, ResolveRequest{FactType: code, OwnerID: ownerID, EventID: ev.ID, ReadOnly: true})
			if err != nil {
				return nil, err
			}
			if h.IsEmpty() {
				continue
			}
			h.Preferred = chosen[ev.Subtype] == ev.ID
			facts = append(facts, h)
		}
	}

	sort.SliceStable(facts, func(i, j int) bool {
		gi, gj := factGroup(facts[i].Info), factGroup(facts[j].Info)
		if gi != gj {
			return gi < gj
		}
		return less(facts[i], facts[j])
	})
	return facts, nil
}
