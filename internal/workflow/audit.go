package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Audit event types recorded by the workflow engine
const (
	// EventWorkflowStarted marks the start of follow-up generation for an assessment
	EventWorkflowStarted = "workflow_started"
	// EventActionGenerated marks the creation of one follow-up action
	EventActionGenerated = "action_generated"
	// EventActionEscalated marks the terminal escalation of an overdue action
	EventActionEscalated = "action_escalated"
)

// AuditEntry records one workflow state change for later review
type AuditEntry struct {
	// ID uniquely identifies the entry
	ID string `json:"id"`
	// EventType is one of the Event constants
	EventType string `json:"event_type"`
	// EntityType names the kind of entity the event concerns
	EntityType string `json:"entity_type"`
	// EntityRef identifies the concerned entity (vendor name, action subject)
	EntityRef string `json:"entity_ref"`
	// Description is a human-readable account of the event
	Description string `json:"description"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
}

func newAuditEntry(eventType, entityType, entityRef, description string, now time.Time) AuditEntry {
	return AuditEntry{
		ID:          uuid.NewString(),
		EventType:   eventType,
		EntityType:  entityType,
		EntityRef:   entityRef,
		Description: description,
		Timestamp:   now,
	}
}
