package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Source is a document or repository cited as evidence.
type Source struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher,omitempty"`
}

// Citation cites a source for one fact. A citation is filed under a
// citation type and a record ID: an event-backed fact files under the
// generic event code and the event ID, a fixed fact under its own code and
// the owner ID.
type Citation struct {
	ID         int64        `json:"id"`
	SourceID   int64        `json:"source_id"`
	SourceName string       `json:"source_name,omitempty"`
	Detail     string       `json:"detail,omitempty"`
	Type       FactTypeCode `json:"type"`
	RecordID   int64        `json:"record_id"`
	Order      int          `json:"order"`
}

// Key returns the footnote key of the citation. Citations of the same
// source with the same detail share one footnote.
func (c Citation) Key() CitationKey {
	return SourceCitationKey(c.SourceID, c.Detail)
}

// CitationKey identifies footnote content within a render pass.
type CitationKey string

// SourceCitationKey builds the key of a source citation.
func SourceCitationKey(sourceID int64, detail string) CitationKey {
	return CitationKey(fmt.Sprintf("src:%d:%s", sourceID, detail))
}

// NoteKey builds the key of a free-text note footnote for a fact.
func NoteKey(code FactTypeCode, ownerID int64) CitationKey {
	return CitationKey(fmt.Sprintf("note:%d:%d", code, ownerID))
}

// FootnotePayload is the content shown in a footnote table row. It is
// either a SourceCitation or a FreeTextNote.
type FootnotePayload interface {
	Text() string
	footnotePayload()
}

// SourceCitation is a footnote that cites a source.
type SourceCitation struct {
	Citation Citation `json:"citation"`
}

// Text implements FootnotePayload.
func (s SourceCitation) Text() string {
	switch {
	case s.Citation.Detail == "":
		return s.Citation.SourceName
	case s.Citation.SourceName == "":
		return s.Citation.Detail
	default:
		return s.Citation.SourceName + ": " + s.Citation.Detail
	}
}

func (SourceCitation) footnotePayload() {}

// FreeTextNote is a footnote that carries a note body.
type FreeTextNote struct {
	Body string `json:"body"`
}

// Text implements FootnotePayload.
func (n FreeTextNote) Text() string { return n.Body }

func (FreeTextNote) footnotePayload() {}

// Footnote is a numbered footnote row.
type Footnote struct {
	Number  int             `json:"number"`
	Key     CitationKey     `json:"key"`
	Payload FootnotePayload `json:"-"`
}

// Text returns the text of the footnote payload.
func (f Footnote) Text() string {
	if f.Payload == nil {
		return ""
	}
	return f.Payload.Text()
}

var superscriptDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

// Superscript renders a footnote marker for the given numbers, for
// example "¹,³". It returns "" when there are none.
func Superscript(numbers ...int) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		var b strings.Builder
		for _, d := range strconv.Itoa(n) {
			if d >= '0' && d <= '9' {
				b.WriteRune(superscriptDigits[d-'0'])
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ",")
}
