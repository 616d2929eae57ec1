package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/ports"
)

// timeNow is a variable for testing purposes.
var timeNow = time.Now

const cremated = "cremated"

// ResolverService resolves fact type codes to fact handles and writes
// edited handles back.
type ResolverService struct {
	store     ports.EntityStore
	places    ports.PlaceResolver
	citations ports.CitationStore
	sources   ports.SourceStore
	auth      ports.Authorizer
	audit     ports.AuditLog
	tx        ports.Transactor
	metrics   ports.ResolverMetrics
	logger    *zap.Logger

	repairOnRead bool
	creates      singleflight.Group
}

// ResolverOption configures a ResolverService.
type ResolverOption func(*ResolverService)

// WithMetrics sets the metrics sink.
func WithMetrics(m ports.ResolverMetrics) ResolverOption {
	return func(s *ResolverService) { s.metrics = m }
}

// WithRepairOnRead controls whether Resolve persists the promotion of an
// unflagged event to preferred. Defaults to true.
func WithRepairOnRead(enabled bool) ResolverOption {
	return func(s *ResolverService) { s.repairOnRead = enabled }
}

// NewResolverService creates a new ResolverService.
func NewResolverService(db ports.RelationalDB, logger *zap.Logger, opts ...ResolverOption) *ResolverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ResolverService{
		store:        db,
		places:       db,
		citations:    db,
		sources:      db,
		auth:         db,
		audit:        db,
		tx:           db,
		metrics:      noopMetrics{},
		logger:       logger.Named("resolver"),
		repairOnRead: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	return s
}

// ResolveRequest describes one resolution.
type ResolveRequest struct {
	FactType entities.FactTypeCode
	OwnerID  int64
	// Subtype selects the event subtype of a generic event code.
	Subtype entities.EventSubtype
	// EventID selects one specific event of an event-backed fact.
	EventID   int64
	Overrides *entities.Overrides
	// Creating synthesizes a blank owner when it does not exist yet.
	Creating bool
	// ReadOnly disables every write: no lazy creation, no promotion.
	ReadOnly bool
}

// Resolve resolves factType for ownerID, creating the backing event when
// the fact has none yet.
func (s *ResolverService) Resolve(ctx context.Context, factType entities.FactTypeCode, ownerID int64, overrides *entities.Overrides) (*entities.FactHandle, error) {
	return s.ResolveWith(ctx, ResolveRequest{FactType: factType, OwnerID: ownerID, Overrides: overrides})
}

// ResolveReadOnly resolves like Resolve but never writes. A missing
// event yields an unsaved blank event.
func (s *ResolverService) ResolveReadOnly(ctx context.Context, factType entities.FactTypeCode, ownerID int64, overrides *entities.Overrides) (*entities.FactHandle, error) {
	return s.ResolveWith(ctx, ResolveRequest{FactType: factType, OwnerID: ownerID, Overrides: overrides, ReadOnly: true})
}

// ResolveWith resolves a fully described request.
func (s *ResolverService) ResolveWith(ctx context.Context, req ResolveRequest) (*entities.FactHandle, error) {
	info, err := entities.LookupFactType(req.FactType)
	if err != nil {
		return nil, err
	}

	start := timeNow()
	defer func() { s.metrics.ObserveResolve(string(info.Storage), timeNow().Sub(start)) }()

	owner, synthesized, err := s.loadOwner(ctx, info.Owner, req.OwnerID, req.Creating)
	if err != nil {
		return nil, err
	}
	return s.resolveFor(ctx, info, owner, synthesized, req)
}

func (s *ResolverService) loadOwner(ctx context.Context, kind entities.OwnerKind, id int64, creating bool) (entities.Record, bool, error) {
	rec, err := s.store.Load(ctx, kind, id)
	if err != nil {
		return nil, false, fmt.Errorf("loading %s %d: %w", kind, id, err)
	}
	if rec != nil {
		return rec, false, nil
	}
	if !creating {
		return nil, false, fmt.Errorf("%s %d: %w", kind, id, entities.ErrEntityNotFound)
	}
	rec, err = entities.NewRecord(kind, id)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (s *ResolverService) resolveFor(ctx context.Context, info entities.FactTypeInfo, owner entities.Record, synthesized bool, req ResolveRequest) (*entities.FactHandle, error) {
	h := &entities.FactHandle{
		FactType:    info.Code,
		Info:        info,
		Label:       info.Name,
		OwnerKind:   info.Owner,
		OwnerID:     owner.RecordID(),
		Owner:       owner,
		Synthesized: synthesized,
	}

	if !synthesized {
		forWhom, linkErr, err := s.describeOwner(ctx, owner)
		if err != nil {
			return nil, err
		}
		h.ForWhom = forWhom
		if linkErr != nil {
			h.LinkErr = linkErr
			h.Warn(entities.WarnUnlinked, linkErr.Error())
			s.logger.Warn("fact owner has a dangling link", s.fields(h, zap.Error(linkErr))...)
		}
	}

	if info.IsEvent() {
		if err := s.bindEvent(ctx, h, req); err != nil {
			return nil, err
		}
	} else {
		bindFixed(h)
	}

	s.readValues(h)
	if err := s.resolvePlace(ctx, h); err != nil {
		return nil, err
	}

	// Only the stored description is read as a cremation marker; an
	// override comes back as given.
	markCremated(h)
	for _, part := range h.Apply(req.Overrides) {
		h.Warn(entities.WarnOverrideIgnored, fmt.Sprintf("%s has no %s", info.Name, part))
		s.logger.Warn("override ignored", s.fields(h, zap.String("part", string(part)))...)
	}
	if h.Cremated && req.Overrides != nil && req.Overrides.Description != nil && info.Has(entities.PartDescription) {
		h.Cremated = false
		h.Changed = true
	}
	return h, nil
}

// bindFixed binds the handle to the owner record's fields.
func bindFixed(h *entities.FactHandle) {
	rec, f := h.Owner, h.Info.Fields
	if f.Date != "" {
		h.Access.Date = recordField(rec, f.Date)
	}
	if f.Description != "" {
		h.Access.Description = recordField(rec, f.Description)
	}
	if f.Notes != "" {
		h.Access.Notes = recordField(rec, f.Notes)
	}
	if f.Place != "" {
		kind := placeKindFor(h.Info, nil)
		h.Access.Place = entities.PlaceAccessor{
			Get: func() (int64, entities.PlaceKind) {
				id, _ := rec.PlaceField(f.Place)
				return id, kind
			},
			Set: func(id int64, _ entities.PlaceKind) error {
				return rec.SetPlaceField(f.Place, id)
			},
		}
	}
	h.CitationType = h.Info.CitationType()
	h.CitationRecordID = h.OwnerID
}

func recordField(rec entities.Record, name string) entities.FieldAccessor {
	return entities.FieldAccessor{
		Get: func() string {
			v, _ := rec.Field(name)
			return v
		},
		Set: func(v string) error { return rec.SetField(name, v) },
	}
}

// bindEvent selects or creates the backing event and binds the handle to
// its fields.
func (s *ResolverService) bindEvent(ctx context.Context, h *entities.FactHandle, req ResolveRequest) error {
	info := h.Info
	var ev *entities.StandaloneEvent

	switch {
	case req.EventID > 0:
		loaded, err := s.eventOf(ctx, h, req.EventID)
		if err != nil {
			return err
		}
		ev = loaded

	default:
		sub := info.Subtype
		if info.Generic {
			sub = req.Subtype
		}
		if sub == 0 {
			return fmt.Errorf("%s for %s %d: %w", info.Name, h.OwnerKind, h.OwnerID, entities.ErrMissingSubtype)
		}
		h.Subtype = sub

		if h.Synthesized {
			ev = s.blankEvent(h, sub)
			break
		}
		events, err := s.store.ListEvents(ctx, h.OwnerKind, h.OwnerID)
		if err != nil {
			return fmt.Errorf("listing events of %s %d: %w", h.OwnerKind, h.OwnerID, err)
		}
		matching := eventsOfSubtype(events, sub)
		if len(matching) == 0 {
			if req.ReadOnly {
				ev = s.blankEvent(h, sub)
				break
			}
			created, err := s.createPreferred(ctx, h, sub)
			if err != nil {
				return err
			}
			ev = created
			break
		}
		ev = s.selectPreferred(ctx, h, matching, req.ReadOnly)
	}

	h.Event = ev
	h.Subtype = ev.Subtype
	h.Preferred = h.Preferred || ev.Preferred
	if info.Generic {
		h.Label = entities.EventLabel(ev)
	}
	h.CitationType = info.CitationType()
	h.CitationRecordID = ev.ID
	bindEventFields(h, ev)
	return nil
}

func (s *ResolverService) eventOf(ctx context.Context, h *entities.FactHandle, id int64) (*entities.StandaloneEvent, error) {
	ev, err := s.store.LoadEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading event %d: %w", id, err)
	}
	if ev == nil || ev.OwnerKind != h.OwnerKind || ev.OwnerID != h.OwnerID {
		return nil, fmt.Errorf("event %d of %s %d: %w", id, h.OwnerKind, h.OwnerID, entities.ErrEntityNotFound)
	}
	if !h.Info.Generic && ev.Subtype != h.Info.Subtype {
		return nil, fmt.Errorf("event %d is not a %s: %w", id, h.Info.Name, entities.ErrEntityNotFound)
	}
	return ev, nil
}

func (s *ResolverService) blankEvent(h *entities.FactHandle, sub entities.EventSubtype) *entities.StandaloneEvent {
	ev := &entities.StandaloneEvent{
		OwnerKind: h.OwnerKind,
		OwnerID:   h.OwnerID,
		Subtype:   sub,
		Preferred: true,
	}
	if h.Info.PlaceKind == entities.PlaceTemple {
		ev.Kind = entities.EventKindTemple
	}
	return ev
}

type createResult struct {
	event   entities.StandaloneEvent
	created bool
}

// createPreferred lazily materializes the preferred event of a subtype.
// Concurrent calls for the same owner and subtype share one insert.
func (s *ResolverService) createPreferred(ctx context.Context, h *entities.FactHandle, sub entities.EventSubtype) (*entities.StandaloneEvent, error) {
	key := fmt.Sprintf("%s:%d:%d", h.OwnerKind, h.OwnerID, sub)
	v, err, _ := s.creates.Do(key, func() (any, error) {
		ev, created, err := s.store.CreatePreferredEvent(ctx, s.blankEvent(h, sub))
		if err != nil {
			return nil, err
		}
		return createResult{event: *ev, created: created}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s event for %s %d: %w", sub.Label(), h.OwnerKind, h.OwnerID, err)
	}

	res := v.(createResult)
	ev := res.event
	if res.created {
		s.metrics.EventCreated(h.Info.Name)
		s.logger.Debug("created event on read", s.fields(h, zap.Int64("event_id", ev.ID))...)
		s.checkDuplicates(ctx, h, sub, ev.ID)
	}
	return &ev, nil
}

// checkDuplicates warns when a store without a uniqueness backstop let a
// concurrent resolution create a second preferred event.
func (s *ResolverService) checkDuplicates(ctx context.Context, h *entities.FactHandle, sub entities.EventSubtype, createdID int64) {
	events, err := s.store.ListEvents(ctx, h.OwnerKind, h.OwnerID)
	if err != nil {
		s.logger.Warn("re-listing events after create failed", s.fields(h, zap.Error(err))...)
		return
	}
	choice := choosePreferred(eventsOfSubtype(events, sub))
	if len(choice.flagged) > 1 {
		h.Warn(entities.WarnDuplicateEvents, fmt.Sprintf("concurrent resolutions created events %v", choice.flagged))
		s.logger.Warn("duplicate events created concurrently",
			s.fields(h, zap.Int64s("event_ids", choice.flagged), zap.Int64("created_id", createdID))...)
	}
}

// selectPreferred applies the single-preferred-instance rule to the
// events of one subtype.
func (s *ResolverService) selectPreferred(ctx context.Context, h *entities.FactHandle, events []entities.StandaloneEvent, readOnly bool) *entities.StandaloneEvent {
	choice := choosePreferred(events)
	ev := choice.event

	switch {
	case len(choice.flagged) > 1:
		s.metrics.PreferredConflict()
		h.Warn(entities.WarnMultiplePreferred,
			fmt.Sprintf("%d preferred %s events %v; using %d", len(choice.flagged), ev.Subtype.Label(), choice.flagged, ev.ID))
		s.logger.Warn("multiple preferred events", s.fields(h, zap.Int64s("event_ids", choice.flagged))...)

	case choice.promote:
		h.Preferred = true
		if readOnly || !s.repairOnRead {
			break
		}
		if err := s.store.SetPreferredEvent(ctx, ev.ID); err != nil {
			h.Warn(entities.WarnRepairSkipped, fmt.Sprintf("promoting event %d: %v", ev.ID, err))
			s.logger.Warn("promoting event failed", s.fields(h, zap.Int64("event_id", ev.ID), zap.Error(err))...)
			break
		}
		ev.Preferred = true
		s.metrics.PreferredPromoted()
		s.logger.Debug("promoted event to preferred", s.fields(h, zap.Int64("event_id", ev.ID))...)
	}
	return ev
}

func bindEventFields(h *entities.FactHandle, ev *entities.StandaloneEvent) {
	h.Access.Date = entities.FieldAccessor{
		Get: func() string { return ev.Date },
		Set: func(v string) error { ev.Date = v; return nil },
	}
	h.Access.Description = entities.FieldAccessor{
		Get: func() string { return ev.Description },
		Set: func(v string) error { ev.Description = v; return nil },
	}
	h.Access.Notes = entities.FieldAccessor{
		Get: func() string { return ev.Notes },
		Set: func(v string) error { ev.Notes = v; return nil },
	}
	info := h.Info
	h.Access.Place = entities.PlaceAccessor{
		Get: func() (int64, entities.PlaceKind) {
			return ev.PlaceRef(), placeKindFor(info, ev)
		},
		Set: func(id int64, kind entities.PlaceKind) error {
			switch kind {
			case entities.PlaceAddress:
				ev.AddressID = id
			case entities.PlaceTemple:
				ev.AddressID, ev.PlaceID, ev.Kind = 0, id, entities.EventKindTemple
			default:
				ev.AddressID, ev.PlaceID, ev.Kind = 0, id, entities.EventKindLocation
			}
			return nil
		},
	}
}

// placeKindFor dispatches a fact's place to address, temple or location,
// in that order of precedence.
func placeKindFor(info entities.FactTypeInfo, ev *entities.StandaloneEvent) entities.PlaceKind {
	if info.AddressBased() {
		return entities.PlaceAddress
	}
	if ev != nil {
		return ev.PlaceKind()
	}
	if info.PlaceKind != "" {
		return info.PlaceKind
	}
	return entities.PlaceLocation
}

func (s *ResolverService) readValues(h *entities.FactHandle) {
	if a := h.Access.Date; a.Supported() {
		h.Date = a.Get()
	}
	if a := h.Access.Description; a.Supported() {
		h.Description = a.Get()
	}
	if a := h.Access.Notes; a.Supported() {
		h.Notes = a.Get()
	}
}

// resolvePlace fills the handle's place. An unresolvable reference is a
// read-path degradation: the handle records PlaceErr and a warning.
func (s *ResolverService) resolvePlace(ctx context.Context, h *entities.FactHandle) error {
	if !h.Access.Place.Supported() {
		return nil
	}
	id, kind := h.Access.Place.Get()
	if id == 0 {
		return nil
	}
	ref, err := s.places.ResolvePlace(ctx, id, kind)
	if err != nil {
		return fmt.Errorf("resolving %s %d: %w", kind, id, err)
	}
	if ref == nil {
		h.PlaceErr = fmt.Errorf("%s %d: %w", kind, id, entities.ErrPlaceUnresolved)
		h.Warn(entities.WarnPlaceUnresolved, h.PlaceErr.Error())
		s.logger.Warn("place not found", s.fields(h, zap.Int64("place_id", id), zap.String("place_kind", string(kind)))...)
		return nil
	}
	h.Place = ref
	return nil
}

// markCremated turns a burial described as cremated into the Cremated
// flag.
func markCremated(h *entities.FactHandle) {
	if h.Subtype != entities.SubtypeBurial {
		return
	}
	if strings.EqualFold(strings.TrimSpace(h.Description), cremated) {
		h.Cremated = true
		h.Description = ""
	}
}

func (s *ResolverService) fields(h *entities.FactHandle, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.Int("fact_type", int(h.FactType)),
		zap.String("owner_kind", string(h.OwnerKind)),
		zap.Int64("owner_id", h.OwnerID),
	}
	if h.Subtype != 0 {
		fields = append(fields, zap.Int("subtype", int(h.Subtype)))
	}
	return append(fields, extra...)
}

type noopMetrics struct{}

func (noopMetrics) EventCreated(string)                  {}
func (noopMetrics) PreferredPromoted()                   {}
func (noopMetrics) PreferredConflict()                   {}
func (noopMetrics) ObserveResolve(string, time.Duration) {}
func (noopMetrics) FootnoteAssigned()                    {}
