package services

import (
	"sync"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// FootnoteRegistry numbers citations for one render pass. Numbers start
// at 1, follow first-reference order and are never reused; registering a
// known key returns the number it already has.
type FootnoteRegistry struct {
	mu      sync.Mutex
	numbers map[entities.CitationKey]int
	notes   []entities.Footnote
}

// NewFootnoteRegistry creates an empty registry.
func NewFootnoteRegistry() *FootnoteRegistry {
	return &FootnoteRegistry{numbers: make(map[entities.CitationKey]int)}
}

// Register returns the footnote number of key, assigning the next number
// when the key is new. The payload of a known key is not replaced.
func (r *FootnoteRegistry) Register(key entities.CitationKey, payload entities.FootnotePayload) int {
	n, _ := r.register(key, payload)
	return n
}

func (r *FootnoteRegistry) register(key entities.CitationKey, payload entities.FootnotePayload) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.numbers[key]; ok {
		return n, false
	}
	n := len(r.notes) + 1
	r.numbers[key] = n
	r.notes = append(r.notes, entities.Footnote{Number: n, Key: key, Payload: payload})
	return n, true
}

// Render returns the footnotes in assignment order.
func (r *FootnoteRegistry) Render() []entities.Footnote {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entities.Footnote, len(r.notes))
	copy(out, r.notes)
	return out
}

// Len returns how many footnotes have been assigned.
func (r *FootnoteRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}
