package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/ports"
)

func target(kind entities.OwnerKind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func (s *ResolverService) authorize(ctx context.Context, user entities.UserContext, rec entities.Record) error {
	ok, err := s.auth.CanEdit(ctx, user, rec)
	if err != nil {
		return fmt.Errorf("checking edit permission: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s may not edit %s %d: %w", user.UserName, rec.Kind(), rec.RecordID(), entities.ErrOwnershipViolation)
	}
	return nil
}

func (s *ResolverService) checkLinks(ctx context.Context, rec entities.Record) error {
	_, linkErr, err := s.describeOwner(ctx, rec)
	if err != nil {
		return err
	}
	return linkErr
}

func (s *ResolverService) logAudit(ctx context.Context, action string, kind entities.OwnerKind, id int64, details map[string]any) {
	if err := s.audit.LogAction(ctx, action, target(kind, id), details); err != nil {
		s.logger.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

// txStores are the stores one unit of work writes through.
type txStores struct {
	store     ports.EntityStore
	places    ports.PlaceResolver
	citations ports.CitationStore
	sources   ports.SourceStore
}

// inTx runs fn inside one transaction of the relational store.
func (s *ResolverService) inTx(ctx context.Context, fn func(tx txStores) error) error {
	return s.tx.WithinTx(ctx, func(db ports.RelationalDB) error {
		return fn(txStores{store: db, places: db, citations: db, sources: db})
	})
}

// Save writes an edited handle back to its owner record or its event.
// Nothing is written when the user may not edit the owner, the owner has
// a dangling link, or the place cannot be resolved. The place, the owner
// of a new record and the event are written together or not at all; on
// failure the handle keeps its edits so the save can be retried.
func (s *ResolverService) Save(ctx context.Context, user entities.UserContext, h *entities.FactHandle) error {
	if h == nil || h.Owner == nil {
		return fmt.Errorf("saving fact: %w", entities.ErrEntityNotFound)
	}
	if err := s.authorize(ctx, user, h.Owner); err != nil {
		return err
	}
	if err := s.checkLinks(ctx, h.Owner); err != nil {
		return fmt.Errorf("saving %s: %w", h.Info.Name, err)
	}

	var (
		before    entities.StandaloneEvent
		placeID   int64
		placeKind entities.PlaceKind
		setPlace  bool
	)
	recordID := h.CitationRecordID
	if h.Event != nil {
		before = *h.Event
	}

	err := s.inTx(ctx, func(tx txStores) error {
		var err error
		placeID, placeKind, setPlace, err = s.pendingPlace(ctx, tx, h)
		if err != nil {
			return err
		}
		if err := writeParts(h, placeID, placeKind, setPlace); err != nil {
			return err
		}
		if h.Synthesized || !h.Info.IsEvent() {
			if err := tx.store.Save(ctx, h.Owner); err != nil {
				return fmt.Errorf("saving %s %d: %w", h.OwnerKind, h.OwnerID, err)
			}
		}
		if h.Info.IsEvent() {
			return s.saveEvent(ctx, tx, h)
		}
		return nil
	})
	if err != nil {
		if h.Event != nil {
			*h.Event = before
		}
		h.CitationRecordID = recordID
		return err
	}

	if setPlace {
		if placeID == 0 {
			h.Place = nil
		} else {
			h.Place = &entities.DisplayRef{ID: placeID, Kind: placeKind, Name: *h.PendingPlace}
		}
		h.PendingPlace = nil
		h.PlaceErr = nil
	}
	h.Synthesized = false
	h.Changed = false

	details := map[string]any{"fact_type": int(h.FactType), "user": user.UserName}
	if h.Event != nil {
		details["event_id"] = h.Event.ID
	}
	s.logAudit(ctx, entities.AuditFactSaved, h.OwnerKind, h.OwnerID, details)
	return nil
}

// writeParts copies the handle's values into its backing record or event.
func writeParts(h *entities.FactHandle, placeID int64, placeKind entities.PlaceKind, setPlace bool) error {
	description := h.Description
	if h.Cremated && description == "" {
		description = cremated
	}
	writes := []struct {
		acc   entities.FieldAccessor
		value string
	}{
		{h.Access.Date, h.Date},
		{h.Access.Description, description},
		{h.Access.Notes, h.Notes},
	}
	for _, w := range writes {
		if !w.acc.Supported() {
			continue
		}
		if err := w.acc.Set(w.value); err != nil {
			return fmt.Errorf("saving %s: %w", h.Info.Name, err)
		}
	}
	if setPlace {
		if err := h.Access.Place.Set(placeID, placeKind); err != nil {
			return fmt.Errorf("saving %s: %w", h.Info.Name, err)
		}
	}
	return nil
}

// pendingPlace resolves an edited place name to a stored place ID.
func (s *ResolverService) pendingPlace(ctx context.Context, tx txStores, h *entities.FactHandle) (int64, entities.PlaceKind, bool, error) {
	if !h.Access.Place.Supported() {
		return 0, "", false, nil
	}
	_, kind := h.Access.Place.Get()
	if h.PendingPlace == nil {
		if h.PlaceErr != nil {
			return 0, "", false, fmt.Errorf("saving %s: %w", h.Info.Name, h.PlaceErr)
		}
		return 0, "", false, nil
	}
	if h.Place != nil && h.Place.Kind.IsValid() {
		kind = h.Place.Kind
	}
	name := *h.PendingPlace
	if name == "" {
		return 0, kind, true, nil
	}
	id, err := tx.places.FindOrCreatePlace(ctx, kind, name)
	if err != nil {
		return 0, "", false, fmt.Errorf("resolving %s %q: %w: %w", kind, name, entities.ErrPlaceUnresolved, err)
	}
	return id, kind, true, nil
}

func (s *ResolverService) saveEvent(ctx context.Context, tx txStores, h *entities.FactHandle) error {
	ev := h.Event
	if ev.ID == 0 && ev.Preferred {
		stored, created, err := tx.store.CreatePreferredEvent(ctx, ev)
		if err != nil {
			return fmt.Errorf("creating %s event: %w", ev.Subtype.Label(), err)
		}
		if created {
			*ev = *stored
			h.CitationRecordID = ev.ID
			return nil
		}
		// Another writer created the preferred event first; edit that one.
		values := *ev
		*ev = *stored
		ev.Date, ev.PlaceID, ev.Kind, ev.AddressID = values.Date, values.PlaceID, values.Kind, values.AddressID
		ev.Description, ev.Notes = values.Description, values.Notes
	}
	if err := tx.store.SaveEvent(ctx, ev); err != nil {
		return fmt.Errorf("saving event %d: %w", ev.ID, err)
	}
	h.CitationRecordID = ev.ID
	return nil
}

// AddEvent appends an event of subtype to a person or family. The first
// event of a subtype is preferred; later ones are not.
func (s *ResolverService) AddEvent(ctx context.Context, user entities.UserContext, kind entities.OwnerKind, ownerID int64, sub entities.EventSubtype) (*entities.StandaloneEvent, error) {
	if _, ok := entities.GenericEventCode(kind); !ok {
		return nil, fmt.Errorf("%s records have no events: %w", kind, entities.ErrUnknownFactType)
	}
	if sub == 0 {
		return nil, fmt.Errorf("adding event: %w", entities.ErrMissingSubtype)
	}
	owner, _, err := s.loadOwner(ctx, kind, ownerID, false)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, user, owner); err != nil {
		return nil, err
	}
	if err := s.checkLinks(ctx, owner); err != nil {
		return nil, fmt.Errorf("adding event: %w", err)
	}

	ev := &entities.StandaloneEvent{OwnerKind: kind, OwnerID: ownerID, Subtype: sub}
	if info, ok := entities.MilestoneFor(sub); ok && info.PlaceKind == entities.PlaceTemple {
		ev.Kind = entities.EventKindTemple
	}

	events, err := s.store.ListEvents(ctx, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing events of %s %d: %w", kind, ownerID, err)
	}
	if len(eventsOfSubtype(events, sub)) == 0 {
		created, _, err := s.store.CreatePreferredEvent(ctx, ev)
		if err != nil {
			return nil, fmt.Errorf("adding %s event: %w", sub.Label(), err)
		}
		ev = created
	} else if err := s.store.SaveEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("adding %s event: %w", sub.Label(), err)
	}

	s.logAudit(ctx, entities.AuditEventCreated, kind, ownerID, map[string]any{
		"event_id": ev.ID, "subtype": int(sub), "user": user.UserName,
	})
	return ev, nil
}

// DeleteEvent deletes an event. An event with citations is only deleted
// when reassignTo names another event of the same owner to move them to.
// Deleting the preferred event promotes the earliest remaining one.
func (s *ResolverService) DeleteEvent(ctx context.Context, user entities.UserContext, eventID, reassignTo int64) error {
	ev, err := s.store.LoadEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event %d: %w", eventID, err)
	}
	if ev == nil {
		return fmt.Errorf("event %d: %w", eventID, entities.ErrEntityNotFound)
	}
	owner, _, err := s.loadOwner(ctx, ev.OwnerKind, ev.OwnerID, false)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, user, owner); err != nil {
		return err
	}

	citType, _ := entities.GenericEventCode(ev.OwnerKind)
	var (
		dest     *entities.StandaloneEvent
		moved    int
		promoted *entities.StandaloneEvent
	)
	// The citation move, the delete and the promotion commit together.
	err = s.inTx(ctx, func(tx txStores) error {
		n, err := tx.citations.CountCitations(ctx, citType, ev.ID)
		if err != nil {
			return fmt.Errorf("counting citations of event %d: %w", ev.ID, err)
		}
		if n > 0 {
			if reassignTo == 0 {
				return fmt.Errorf("event %d has %d citations: %w", ev.ID, n, entities.ErrEventCited)
			}
			dest, err = tx.store.LoadEvent(ctx, reassignTo)
			if err != nil {
				return fmt.Errorf("loading event %d: %w", reassignTo, err)
			}
			if dest == nil || dest.ID == ev.ID || dest.OwnerKind != ev.OwnerKind || dest.OwnerID != ev.OwnerID {
				return fmt.Errorf("reassigning citations to event %d: %w", reassignTo, entities.ErrEntityNotFound)
			}
			if moved, err = tx.citations.MoveCitations(ctx, citType, ev.ID, dest.ID); err != nil {
				return fmt.Errorf("moving citations: %w", err)
			}
		}

		if err := tx.store.DeleteEvent(ctx, ev.ID); err != nil {
			return fmt.Errorf("deleting event %d: %w", ev.ID, err)
		}
		if !ev.Preferred {
			return nil
		}

		events, err := tx.store.ListEvents(ctx, ev.OwnerKind, ev.OwnerID)
		if err != nil {
			return fmt.Errorf("listing events of %s %d: %w", ev.OwnerKind, ev.OwnerID, err)
		}
		choice := choosePreferred(eventsOfSubtype(events, ev.Subtype))
		if choice.event == nil || !choice.promote {
			return nil
		}
		if err := tx.store.SetPreferredEvent(ctx, choice.event.ID); err != nil {
			return fmt.Errorf("promoting event %d: %w", choice.event.ID, err)
		}
		promoted = choice.event
		return nil
	})
	if err != nil {
		return err
	}

	if dest != nil {
		s.logAudit(ctx, entities.AuditCitationsMoved, ev.OwnerKind, ev.OwnerID, map[string]any{
			"from": ev.ID, "to": dest.ID, "count": moved, "user": user.UserName,
		})
	}
	s.logAudit(ctx, entities.AuditEventDeleted, ev.OwnerKind, ev.OwnerID, map[string]any{
		"event_id": ev.ID, "subtype": int(ev.Subtype), "user": user.UserName,
	})
	if promoted != nil {
		s.metrics.PreferredPromoted()
		s.logAudit(ctx, entities.AuditEventPromoted, ev.OwnerKind, ev.OwnerID, map[string]any{
			"event_id": promoted.ID, "user": user.UserName,
		})
	}
	return nil
}

// RepairPreferred leaves exactly one preferred event of subtype for the
// owner and returns it. It returns nil when the owner has no such events.
func (s *ResolverService) RepairPreferred(ctx context.Context, user entities.UserContext, kind entities.OwnerKind, ownerID int64, sub entities.EventSubtype) (*entities.StandaloneEvent, error) {
	owner, _, err := s.loadOwner(ctx, kind, ownerID, false)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, user, owner); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing events of %s %d: %w", kind, ownerID, err)
	}
	choice := choosePreferred(eventsOfSubtype(events, sub))
	if choice.event == nil {
		return nil, nil
	}
	if !choice.promote && len(choice.flagged) <= 1 {
		return choice.event, nil
	}
	if err := s.store.SetPreferredEvent(ctx, choice.event.ID); err != nil {
		return nil, fmt.Errorf("repairing preferred %s event: %w", sub.Label(), err)
	}
	choice.event.Preferred = true
	s.logAudit(ctx, entities.AuditEventRepaired, kind, ownerID, map[string]any{
		"event_id": choice.event.ID, "cleared": choice.flagged, "user": user.UserName,
	})
	return choice.event, nil
}

// Cite files a citation of the named source under a saved fact.
func (s *ResolverService) Cite(ctx context.Context, user entities.UserContext, h *entities.FactHandle, sourceName, detail string) (*entities.Citation, error) {
	if h == nil || h.Owner == nil {
		return nil, fmt.Errorf("citing fact: %w", entities.ErrEntityNotFound)
	}
	if h.Synthesized || h.CitationRecordID == 0 {
		return nil, fmt.Errorf("citing unsaved %s: %w", h.Info.Name, entities.ErrEntityNotFound)
	}
	if err := s.authorize(ctx, user, h.Owner); err != nil {
		return nil, err
	}

	c := &entities.Citation{
		SourceName: sourceName,
		Detail:     detail,
		Type:       h.CitationType,
		RecordID:   h.CitationRecordID,
	}
	err := s.inTx(ctx, func(tx txStores) error {
		sourceID, err := tx.sources.FindOrCreateSource(ctx, sourceName)
		if err != nil {
			return fmt.Errorf("finding source %q: %w", sourceName, err)
		}
		c.SourceID = sourceID
		if err := tx.citations.SaveCitation(ctx, c); err != nil {
			return fmt.Errorf("saving citation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, entities.AuditCitationAdded, h.OwnerKind, h.OwnerID, map[string]any{
		"citation_id": c.ID, "fact_type": int(h.FactType), "record_id": c.RecordID, "user": user.UserName,
	})
	return c, nil
}
