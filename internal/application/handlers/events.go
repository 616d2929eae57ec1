package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/ports"
	"github.com/ersonp/lineage-core/internal/domain/services"
)

// EventsHandler manages the standalone events of persons and families.
type EventsHandler struct {
	resolver *services.ResolverService
	store    ports.EntityStore
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(resolver *services.ResolverService, store ports.EntityStore) *EventsHandler {
	return &EventsHandler{
		resolver: resolver,
		store:    store,
	}
}

// EventView is one event as listed.
type EventView struct {
	ID        int64                 `json:"id"`
	Subtype   entities.EventSubtype `json:"subtype"`
	Label     string                `json:"label"`
	Date      string                `json:"date,omitempty"`
	Order     int                   `json:"order"`
	Preferred bool                  `json:"preferred"`
}

func eventView(ev *entities.StandaloneEvent) EventView {
	return EventView{
		ID:        ev.ID,
		Subtype:   ev.Subtype,
		Label:     entities.EventLabel(ev),
		Date:      ev.Date,
		Order:     ev.Order,
		Preferred: ev.Preferred,
	}
}

// HandleList lists the events of an owner in display order.
func (h *EventsHandler) HandleList(ctx context.Context, kind entities.OwnerKind, ownerID int64) ([]EventView, error) {
	events, err := h.store.ListEvents(ctx, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	views := make([]EventView, 0, len(events))
	for i := range events {
		views = append(views, eventView(&events[i]))
	}
	return views, nil
}

// HandleAdd appends an event of subtype to the owner.
func (h *EventsHandler) HandleAdd(ctx context.Context, user entities.UserContext, kind entities.OwnerKind, ownerID int64, sub entities.EventSubtype) (*EventView, error) {
	ev, err := h.resolver.AddEvent(ctx, user, kind, ownerID, sub)
	if err != nil {
		return nil, err
	}
	view := eventView(ev)
	return &view, nil
}

// HandleDelete deletes an event, moving its citations to reassignTo.
func (h *EventsHandler) HandleDelete(ctx context.Context, user entities.UserContext, eventID, reassignTo int64) error {
	return h.resolver.DeleteEvent(ctx, user, eventID, reassignTo)
}

// HandleRepair leaves one preferred event of subtype and returns it, or
// nil when the owner has no such event.
func (h *EventsHandler) HandleRepair(ctx context.Context, user entities.UserContext, kind entities.OwnerKind, ownerID int64, sub entities.EventSubtype) (*EventView, error) {
	ev, err := h.resolver.RepairPreferred(ctx, user, kind, ownerID, sub)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, nil
	}
	view := eventView(ev)
	return &view, nil
}
