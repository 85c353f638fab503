// Package events defines event types for reconciliation run lifecycle
// notifications.
package events

import (
	"time"

	"github.com/storeops/stocksync/pkg/models"
)

type EventType string

// Topic carries all run lifecycle events.
const Topic = "stocksync.runs"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	RunStartedEvent   EventType = "run.started"
	RunBlockedEvent   EventType = "run.blocked"
	RunCompletedEvent EventType = "run.completed"
	RunFailedEvent    EventType = "run.failed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
}

// RunStarted is published once per run before the link read begins.
type RunStarted struct {
	BaseEvent

	DryRun bool `json:"dry_run"`
	Force  bool `json:"force"`
}

func (e RunStarted) GetType() EventType {
	return RunStartedEvent
}

// RunBlocked is published when a safety gate aborts a live run.
type RunBlocked struct {
	BaseEvent

	Reason         models.AbortReason         `json:"reason"`
	StaleSuppliers []models.SupplierFreshness `json:"stale_suppliers,omitempty"`
	Anomalies      []models.Anomaly           `json:"anomalies,omitempty"`
}

func (e RunBlocked) GetType() EventType {
	return RunBlockedEvent
}

// RunCompleted is published after the run summary is written.
type RunCompleted struct {
	BaseEvent

	Status   models.RunStatus `json:"status"`
	Enabled  int              `json:"enabled"`
	Disabled int              `json:"disabled"`
	Updated  int              `json:"updated"`
	Skipped  int              `json:"skipped"`
	Errors   int              `json:"errors"`
	DryRun   bool             `json:"dry_run"`
}

func (e RunCompleted) GetType() EventType {
	return RunCompletedEvent
}

// RunFailed is published when a run dies on a fatal error.
type RunFailed struct {
	BaseEvent

	Error string `json:"error"`
}

func (e RunFailed) GetType() EventType {
	return RunFailedEvent
}
