package services

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// RenderContext carries the state of one render pass. It is created per
// request and must not be shared between requests.
type RenderContext struct {
	ID        uuid.UUID
	Footnotes *FootnoteRegistry
	Places    *PlaceTable
}

// NewRenderContext starts a render pass.
func NewRenderContext() *RenderContext {
	return &RenderContext{
		ID:        uuid.New(),
		Footnotes: NewFootnoteRegistry(),
		Places:    NewPlaceTable(),
	}
}

type placeKey struct {
	kind entities.PlaceKind
	id   int64
}

// PlaceTable records the places shown in one render pass. Every display
// gets its own anchor; the table lists each distinct place once.
type PlaceTable struct {
	mu      sync.Mutex
	counter int
	places  map[placeKey]entities.DisplayRef
	order   []placeKey
}

// NewPlaceTable creates an empty place table.
func NewPlaceTable() *PlaceTable {
	return &PlaceTable{places: make(map[placeKey]entities.DisplayRef)}
}

// Show registers one display of ref and returns it with its anchor set,
// for example "showLoc3_12".
func (t *PlaceTable) Show(ref entities.DisplayRef) entities.DisplayRef {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counter++
	ref.AnchorID = fmt.Sprintf("%s%d_%d", ref.Kind.AnchorPrefix(), t.counter, ref.ID)

	k := placeKey{kind: ref.Kind, id: ref.ID}
	if _, ok := t.places[k]; !ok {
		t.order = append(t.order, k)
		t.places[k] = ref
	}
	return ref
}

// Places returns each distinct place in first-shown order, carrying the
// anchor of its first display.
func (t *PlaceTable) Places() []entities.DisplayRef {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]entities.DisplayRef, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.places[k])
	}
	return out
}
