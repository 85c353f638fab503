package models

import "time"

// WorkflowName tags every run summary written by the reconciliation engine.
const WorkflowName = "availability-reconciliation"

// RunStatus is the terminal state of one reconciliation run.
type RunStatus string

const (
	RunStatusSuccess        RunStatus = "success"
	RunStatusPartialFailure RunStatus = "partial_failure"
	RunStatusAborted        RunStatus = "aborted"
)

// AbortReason names the gate that blocked a run.
type AbortReason string

const (
	AbortStaleData       AbortReason = "stale_data"
	AbortAnomalyDetected AbortReason = "anomaly_detected"
)

// RunSnapshot captures one link's state immediately before mutation, tagged
// with the run identifier. Snapshots are written once, never updated, and
// retained for audit and manual rollback.
type RunSnapshot struct {
	RunID                string       `json:"run_id"`
	LinkID               string       `json:"link_id"`
	ProductID            int64        `json:"product_id"`
	SKU                  string       `json:"sku"`
	PreviousAvailability Availability `json:"previous_availability"`
	PreviousInventory    int          `json:"previous_inventory"`
	IntendedAction       Action       `json:"intended_action"`
	IntendedAvailability Availability `json:"intended_availability"`
	IntendedInventory    int          `json:"intended_inventory"`
	SupplierName         string       `json:"supplier_name"`
	CreatedAt            time.Time    `json:"created_at"`
}

// ItemError records a single failed mutation call.
type ItemError struct {
	SKU     string `json:"sku"`
	Action  Action `json:"action"`
	Message string `json:"message"`
}

// RunMetadata is the counts-and-findings blob embedded in a RunSummary.
type RunMetadata struct {
	Enabled        int                 `json:"enabled"`
	Disabled       int                 `json:"disabled"`
	Updated        int                 `json:"updated"`
	Skipped        int                 `json:"skipped"`
	NoChange       int                 `json:"no_change"`
	MarginWarnings int                 `json:"margin_warnings"`
	Errors         int                 `json:"errors"`
	ErrorDetails   []ItemError         `json:"error_details,omitempty"`
	AbortReason    AbortReason         `json:"abort_reason,omitempty"`
	StaleSuppliers []SupplierFreshness `json:"stale_suppliers,omitempty"`
	Anomalies      []Anomaly           `json:"anomalies,omitempty"`
	SnapshotCount  int                 `json:"snapshot_count,omitempty"`
	DryRun         bool                `json:"dry_run,omitempty"`
	Forced         bool                `json:"forced,omitempty"`
}

// RunSummary is the audit-log row written once per run (or per abort) and
// never mutated afterwards.
type RunSummary struct {
	ID              string      `json:"id"`
	WorkflowName    string      `json:"workflow_name" validate:"required"`
	Status          RunStatus   `json:"status"        validate:"required"`
	StartedAt       time.Time   `json:"started_at"`
	CompletedAt     time.Time   `json:"completed_at"`
	DurationSeconds float64     `json:"duration_seconds"`
	Metadata        RunMetadata `json:"metadata"`
}
