package reconcile

import (
	"strings"

	"github.com/storeops/stocksync/pkg/config"
	"github.com/storeops/stocksync/pkg/models"
)

// PlanItem is one link's decision plus the identifiers and prior state the
// executor and snapshot writer need.
type PlanItem struct {
	LinkID               string
	StorefrontProductID  string
	PlatformProductID    int64
	SKU                  string
	Name                 string
	PreviousAvailability models.Availability
	PreviousInventory    int
	Decision             models.Decision
}

// Plan is the complete mutation plan for one run, computed over every active
// link before any gate or mutation runs.
type Plan struct {
	Enable  []PlanItem
	Disable []PlanItem
	Update  []PlanItem
	Skipped []PlanItem

	NoChange   int
	TotalLinks int

	// SupplierTotals counts all links per (lowercased) supplier, including
	// skipped and unchanged ones. The wipeout check needs the full population.
	SupplierTotals map[string]int

	MarginWarnings []models.MarginWarning
}

// ChangeCount is the number of mutations the plan would issue.
func (p *Plan) ChangeCount() int {
	return len(p.Enable) + len(p.Disable) + len(p.Update)
}

// Mutations returns enable, disable, and update items in execution order.
func (p *Plan) Mutations() []PlanItem {
	items := make([]PlanItem, 0, p.ChangeCount())
	items = append(items, p.Enable...)
	items = append(items, p.Disable...)
	items = append(items, p.Update...)

	return items
}

// BuildPlan runs the decision policy over every link and partitions the
// outcomes into action batches. Margin findings are collected here because the
// plan pass is the only full scan of the catalog.
func BuildPlan(links []*models.LinkedProduct, cfg config.Config) *Plan {
	plan := &Plan{
		TotalLinks:     len(links),
		SupplierTotals: make(map[string]int),
	}

	for _, link := range links {
		supplier := strings.ToLower(strings.TrimSpace(link.Link.SupplierName))
		plan.SupplierTotals[supplier]++

		if warning, ok := CheckMargin(link.Storefront, cfg.MarginDiscountPercent); ok {
			plan.MarginWarnings = append(plan.MarginWarnings, warning)
		}

		decision := Decide(link, cfg)
		item := PlanItem{
			LinkID:               link.Link.ID,
			StorefrontProductID:  link.Storefront.ID,
			PlatformProductID:    link.Storefront.PlatformProductID,
			SKU:                  link.Storefront.SKU,
			Name:                 link.Storefront.Name,
			PreviousAvailability: link.Storefront.Availability,
			PreviousInventory:    link.Storefront.InventoryLevel,
			Decision:             decision,
		}

		switch decision.Action {
		case models.ActionEnable:
			plan.Enable = append(plan.Enable, item)
		case models.ActionDisable:
			plan.Disable = append(plan.Disable, item)
		case models.ActionUpdate:
			plan.Update = append(plan.Update, item)
		case models.ActionSkip:
			plan.Skipped = append(plan.Skipped, item)
		case models.ActionNone:
			plan.NoChange++
		}
	}

	return plan
}
