package models

import "time"

// Action classifies the mutation a link requires.
type Action string

const (
	ActionSkip    Action = "skip"    // Clearance item, operator-managed inventory
	ActionEnable  Action = "enable"  // disabled -> available
	ActionDisable Action = "disable" // available -> disabled
	ActionUpdate  Action = "update"  // availability unchanged, inventory correction
	ActionNone    Action = "none"    // Current state already matches targets
)

// Decision is the pure policy outcome for one link. It is a function of the
// link's supplier and storefront state at read time only, so re-running the
// engine on unchanged inputs is idempotent.
type Decision struct {
	Action             Action       `json:"action"`
	TargetAvailability Availability `json:"target_availability,omitempty"`
	TargetInventory    int          `json:"target_inventory,omitempty"`
	// ChangeAvailability and ChangeInventory mark which fields differ from
	// the storefront's current state; the executor sends only changed fields.
	ChangeAvailability bool   `json:"change_availability,omitempty"`
	ChangeInventory    bool   `json:"change_inventory,omitempty"`
	Reason             string `json:"reason"`
	SupplierName       string `json:"supplier_name"`
}

// MarginWarning is an advisory finding for a product discounted beyond the
// margin-policy ceiling. It never blocks or alters a decision.
type MarginWarning struct {
	SKU             string  `json:"sku"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	SalePrice       float64 `json:"sale_price"`
	DiscountPercent float64 `json:"discount_percent"`
	Message         string  `json:"message"`
}

// AnomalySeverity grades an anomaly finding.
type AnomalySeverity string

const (
	SeverityWarning  AnomalySeverity = "warning"
	SeverityCritical AnomalySeverity = "critical"
)

// AnomalyType identifies the blast-radius check that fired.
type AnomalyType string

const (
	AnomalyExcessiveDisable      AnomalyType = "excessive_disable"
	AnomalyHighDisablePercentage AnomalyType = "high_disable_percentage"
	AnomalySupplierWipeout       AnomalyType = "supplier_wipeout"
)

// Anomaly is one finding from the anomaly gate.
type Anomaly struct {
	Type     AnomalyType     `json:"type"`
	Severity AnomalySeverity `json:"severity"`
	Message  string          `json:"message"`
}

// SupplierFreshness records how recently one supplier's feed was synchronized.
type SupplierFreshness struct {
	Supplier     string    `json:"supplier"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	AgeHours     float64   `json:"age_hours"`
}
