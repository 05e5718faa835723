package model

import "time"

type AuditAction string

const (
	ActionKept           AuditAction = "kept"
	ActionDeleted        AuditAction = "deleted"
	ActionArchived       AuditAction = "archived"
	ActionAccountCreated AuditAction = "account_created"
	ActionClaimsAssigned AuditAction = "claims_assigned"
	ActionClaimsPresent  AuditAction = "claims_present"
	ActionProfileWritten AuditAction = "profile_written"
)

func (a AuditAction) String() string { return string(a) }

// AuditEvent is published for every mutation or decision a maintenance run makes.
type AuditEvent struct {
	RunID   string      `json:"run_id"  ch:"run_id"`
	Command string      `json:"command" ch:"command"`
	Action  AuditAction `json:"action"  ch:"action"`
	Subject string      `json:"subject" ch:"subject"` // lead id or uid
	Detail  string      `json:"detail"  ch:"detail"`
	At      time.Time   `json:"at"      ch:"at"`
}
