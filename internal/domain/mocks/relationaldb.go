// Package mocks provides in-memory implementations of the domain ports
// for tests.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/ports"
)

// RelationalDB is a mock implementation of ports.RelationalDB.
type RelationalDB struct {
	mu sync.Mutex

	Records   map[entities.OwnerKind]map[int64]entities.Record
	Events    map[int64]*entities.StandaloneEvent
	Places    map[entities.PlaceKind]map[int64]string
	Citations []entities.Citation
	Sources   map[int64]string
	Audit     []entities.AuditEntry

	// ReadOnlyUsers may read but not edit.
	ReadOnlyUsers map[string]bool
	// NoPreferredIndex makes CreatePreferredEvent insert unconditionally,
	// like a store without a unique index on preferred events.
	NoPreferredIndex bool

	// Call counters.
	SaveCalls        int
	SaveEventCalls   int
	CreateEventCalls int

	Err error
	// CreateEventErr and DeleteEventErr fail only CreatePreferredEvent
	// and DeleteEvent.
	CreateEventErr error
	DeleteEventErr error

	// Rollbacks counts WithinTx calls whose changes were discarded.
	Rollbacks int

	nextID int64
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Records:       make(map[entities.OwnerKind]map[int64]entities.Record),
		Events:        make(map[int64]*entities.StandaloneEvent),
		Places:        make(map[entities.PlaceKind]map[int64]string),
		Sources:       make(map[int64]string),
		ReadOnlyUsers: make(map[string]bool),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

func (m *RelationalDB) newID() int64 {
	m.nextID++
	return m.nextID
}

// Put stores a record directly.
func (m *RelationalDB) Put(rec entities.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(rec)
}

func (m *RelationalDB) put(rec entities.Record) {
	byID, ok := m.Records[rec.Kind()]
	if !ok {
		byID = make(map[int64]entities.Record)
		m.Records[rec.Kind()] = byID
	}
	byID[rec.RecordID()] = cloneRecord(rec)
	if rec.RecordID() > m.nextID {
		m.nextID = rec.RecordID()
	}
}

// PutEvent stores an event directly, keeping its ID and flags.
func (m *RelationalDB) PutEvent(ev entities.StandaloneEvent) *entities.StandaloneEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.ID == 0 {
		ev.ID = m.newID()
	} else if ev.ID > m.nextID {
		m.nextID = ev.ID
	}
	m.Events[ev.ID] = &ev
	out := ev
	return &out
}

// PutPlace stores a place directly.
func (m *RelationalDB) PutPlace(kind entities.PlaceKind, id int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.Places[kind]
	if !ok {
		byID = make(map[int64]string)
		m.Places[kind] = byID
	}
	byID[id] = name
	if id > m.nextID {
		m.nextID = id
	}
}

// EventsFor returns the stored events of an owner and subtype ordered by
// (Order, ID).
func (m *RelationalDB) EventsFor(kind entities.OwnerKind, ownerID int64, sub entities.EventSubtype) []entities.StandaloneEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.StandaloneEvent
	for _, ev := range m.sortedEvents(kind, ownerID) {
		if ev.Subtype == sub {
			out = append(out, ev)
		}
	}
	return out
}

func (m *RelationalDB) sortedEvents(kind entities.OwnerKind, ownerID int64) []entities.StandaloneEvent {
	var out []entities.StandaloneEvent
	for _, ev := range m.Events {
		if ev.OwnerKind == kind && ev.OwnerID == ownerID {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(&out[j]) })
	return out
}

// Load loads a record by kind and ID.
func (m *RelationalDB) Load(_ context.Context, kind entities.OwnerKind, id int64) (entities.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[kind][id]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

// Save persists a record.
func (m *RelationalDB) Save(_ context.Context, rec entities.Record) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	m.put(rec)
	return nil
}

// ListEvents lists an owner's events.
func (m *RelationalDB) ListEvents(_ context.Context, kind entities.OwnerKind, ownerID int64) ([]entities.StandaloneEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedEvents(kind, ownerID), nil
}

// LoadEvent loads an event by ID.
func (m *RelationalDB) LoadEvent(_ context.Context, id int64) (*entities.StandaloneEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.Events[id]
	if !ok {
		return nil, nil
	}
	out := *ev
	return &out, nil
}

func (m *RelationalDB) nextOrder(kind entities.OwnerKind, ownerID int64) int {
	order := 0
	for _, ev := range m.Events {
		if ev.OwnerKind == kind && ev.OwnerID == ownerID && ev.Order > order {
			order = ev.Order
		}
	}
	return order + 1
}

func (m *RelationalDB) insertEvent(ev *entities.StandaloneEvent) {
	ev.ID = m.newID()
	if ev.Order == 0 {
		ev.Order = m.nextOrder(ev.OwnerKind, ev.OwnerID)
	}
	now := time.Now()
	ev.CreatedAt, ev.UpdatedAt = now, now
	stored := *ev
	m.Events[ev.ID] = &stored
}

// SaveEvent inserts or updates an event.
func (m *RelationalDB) SaveEvent(_ context.Context, ev *entities.StandaloneEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveEventCalls++
	if ev.ID == 0 {
		m.insertEvent(ev)
		return nil
	}
	if _, ok := m.Events[ev.ID]; !ok {
		return fmt.Errorf("event %d not found", ev.ID)
	}
	ev.UpdatedAt = time.Now()
	stored := *ev
	m.Events[ev.ID] = &stored
	return nil
}

// CreatePreferredEvent inserts a preferred event unless one exists.
func (m *RelationalDB) CreatePreferredEvent(_ context.Context, ev *entities.StandaloneEvent) (*entities.StandaloneEvent, bool, error) {
	if m.Err != nil {
		return nil, false, m.Err
	}
	if m.CreateEventErr != nil {
		return nil, false, m.CreateEventErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateEventCalls++
	if !m.NoPreferredIndex {
		for _, existing := range m.sortedEvents(ev.OwnerKind, ev.OwnerID) {
			if existing.Subtype == ev.Subtype && existing.Preferred {
				return &existing, false, nil
			}
		}
	}
	created := *ev
	created.Preferred = true
	m.insertEvent(&created)
	return &created, true, nil
}

// SetPreferredEvent flags one event preferred among its siblings.
func (m *RelationalDB) SetPreferredEvent(_ context.Context, eventID int64) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.Events[eventID]
	if !ok {
		return fmt.Errorf("event %d not found", eventID)
	}
	for _, ev := range m.Events {
		if ev.OwnerKind == target.OwnerKind && ev.OwnerID == target.OwnerID && ev.Subtype == target.Subtype {
			ev.Preferred = ev.ID == eventID
		}
	}
	return nil
}

// DeleteEvent deletes an event.
func (m *RelationalDB) DeleteEvent(_ context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}
	if m.DeleteEventErr != nil {
		return m.DeleteEventErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Events, id)
	return nil
}

// ResolvePlace resolves a place to its display form.
func (m *RelationalDB) ResolvePlace(_ context.Context, id int64, kind entities.PlaceKind) (*entities.DisplayRef, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.Places[kind][id]
	if !ok {
		return nil, nil
	}
	return &entities.DisplayRef{ID: id, Kind: kind, Name: name}, nil
}

// FindOrCreatePlace finds a place by name or creates it.
func (m *RelationalDB) FindOrCreatePlace(_ context.Context, kind entities.PlaceKind, name string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.Places[kind]
	if !ok {
		byID = make(map[int64]string)
		m.Places[kind] = byID
	}
	for id, n := range byID {
		if strings.EqualFold(n, name) {
			return id, nil
		}
	}
	id := m.newID()
	byID[id] = name
	return id, nil
}

// FindOrCreateSource finds a source by name or creates it.
func (m *RelationalDB) FindOrCreateSource(_ context.Context, name string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.Sources {
		if n == name {
			return id, nil
		}
	}
	id := m.newID()
	m.Sources[id] = name
	return id, nil
}

// ListCitations lists the citations filed under a fact.
func (m *RelationalDB) ListCitations(_ context.Context, typ entities.FactTypeCode, recordID int64) ([]entities.Citation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Citation
	for _, c := range m.Citations {
		if c.Type == typ && c.RecordID == recordID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// CountCitations counts the citations filed under a fact.
func (m *RelationalDB) CountCitations(ctx context.Context, typ entities.FactTypeCode, recordID int64) (int, error) {
	cits, err := m.ListCitations(ctx, typ, recordID)
	return len(cits), err
}

// MoveCitations refiles citations from one record to another.
func (m *RelationalDB) MoveCitations(_ context.Context, typ entities.FactTypeCode, fromID, toID int64) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	moved := 0
	for i := range m.Citations {
		if m.Citations[i].Type == typ && m.Citations[i].RecordID == fromID {
			m.Citations[i].RecordID = toID
			moved++
		}
	}
	return moved, nil
}

// SaveCitation inserts or updates a citation.
func (m *RelationalDB) SaveCitation(_ context.Context, c *entities.Citation) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.newID()
		m.Citations = append(m.Citations, *c)
		return nil
	}
	for i := range m.Citations {
		if m.Citations[i].ID == c.ID {
			m.Citations[i] = *c
			return nil
		}
	}
	m.Citations = append(m.Citations, *c)
	return nil
}

// CanEdit allows any signed-on user not listed in ReadOnlyUsers.
func (m *RelationalDB) CanEdit(_ context.Context, user entities.UserContext, _ entities.Record) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	if user.IsAnonymous() {
		return false, nil
	}
	return !m.ReadOnlyUsers[user.UserName], nil
}

// LogAction logs an action to the audit log.
func (m *RelationalDB) LogAction(_ context.Context, action string, target string, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:        int64(len(m.Audit) + 1),
		Action:    action,
		Target:    target,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// FindAuditLog finds audit log entries for a target.
func (m *RelationalDB) FindAuditLog(_ context.Context, target string) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.AuditEntry
	for _, e := range m.Audit {
		if e.Target == target {
			out = append(out, e)
		}
	}
	return out, m.Err
}

// FindAuditLogByAction finds audit log entries by action type.
func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.AuditEntry
	for _, e := range m.Audit {
		if e.Action == action {
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, m.Err
}

// state is the stored data WithinTx restores on failure. The audit log is
// not part of it.
type state struct {
	records   map[entities.OwnerKind]map[int64]entities.Record
	events    map[int64]*entities.StandaloneEvent
	places    map[entities.PlaceKind]map[int64]string
	citations []entities.Citation
	sources   map[int64]string
	nextID    int64
}

func (m *RelationalDB) snapshot() state {
	st := state{
		records:   make(map[entities.OwnerKind]map[int64]entities.Record, len(m.Records)),
		events:    make(map[int64]*entities.StandaloneEvent, len(m.Events)),
		places:    make(map[entities.PlaceKind]map[int64]string, len(m.Places)),
		citations: append([]entities.Citation(nil), m.Citations...),
		sources:   make(map[int64]string, len(m.Sources)),
		nextID:    m.nextID,
	}
	for kind, byID := range m.Records {
		st.records[kind] = make(map[int64]entities.Record, len(byID))
		for id, rec := range byID {
			st.records[kind][id] = cloneRecord(rec)
		}
	}
	for id, ev := range m.Events {
		c := *ev
		st.events[id] = &c
	}
	for kind, byID := range m.Places {
		st.places[kind] = make(map[int64]string, len(byID))
		for id, name := range byID {
			st.places[kind][id] = name
		}
	}
	for id, name := range m.Sources {
		st.sources[id] = name
	}
	return st
}

func (m *RelationalDB) restore(st state) {
	m.Records = st.records
	m.Events = st.events
	m.Places = st.places
	m.Citations = st.citations
	m.Sources = st.sources
	m.nextID = st.nextID
}

// WithinTx runs fn against the mock itself and puts the stored data back
// as it was when fn fails.
func (m *RelationalDB) WithinTx(_ context.Context, fn func(tx ports.RelationalDB) error) error {
	m.mu.Lock()
	st := m.snapshot()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.restore(st)
		m.Rollbacks++
		m.mu.Unlock()
		return err
	}
	return nil
}

func cloneRecord(rec entities.Record) entities.Record {
	switch r := rec.(type) {
	case *entities.Person:
		c := *r
		return &c
	case *entities.Family:
		c := *r
		return &c
	case *entities.Child:
		c := *r
		return &c
	case *entities.Name:
		c := *r
		return &c
	case *entities.ToDo:
		c := *r
		return &c
	}
	return rec
}
