package entities

import "time"

// Audit actions recorded by the write paths.
const (
	AuditFactSaved      = "fact.saved"
	AuditEventCreated   = "event.created"
	AuditEventPromoted  = "event.promoted"
	AuditEventRepaired  = "event.repaired"
	AuditEventDeleted   = "event.deleted"
	AuditCitationsMoved = "citations.moved"
	AuditCitationAdded  = "citation.added"
	AuditRecordSaved    = "record.saved"
)

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	Target    string         `json:"target,omitempty"`
	UserName  string         `json:"user_name,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
