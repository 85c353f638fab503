// Package reconcile implements the supplier-to-storefront reconciliation
// engine: plan computation, safety gates, snapshotting, and rate-limited
// application of the mutation plan to the commerce platform.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/storeops/stocksync/pkg/config"
	"github.com/storeops/stocksync/pkg/models"
)

// Decide computes the mutation decision for one link. It is a pure function
// of the link's supplier and storefront state at read time.
func Decide(link *models.LinkedProduct, cfg config.Config) models.Decision {
	product := link.Storefront
	supplier := strings.ToLower(strings.TrimSpace(link.Link.SupplierName))

	if IsClearanceItem(product) {
		return models.Decision{
			Action:       models.ActionSkip,
			Reason:       fmt.Sprintf("clearance item (sku=%s): manual inventory control", product.SKU),
			SupplierName: supplier,
		}
	}

	rule := cfg.RuleFor(supplier)

	stock := link.Supplier.StockLevel
	if stock < 0 {
		stock = 0
	}

	var targetInventory int

	if rule.RespectActualStock {
		targetInventory = stock
	} else if stock > 0 {
		targetInventory = rule.FixedInStockInventory
	}

	targetAvailability := models.AvailabilityDisabled
	if targetInventory > 0 {
		targetAvailability = models.AvailabilityAvailable
	}

	changeAvailability := product.Availability != targetAvailability
	changeInventory := product.InventoryLevel != targetInventory

	if !changeAvailability && !changeInventory {
		return models.Decision{
			Action:       models.ActionNone,
			SupplierName: supplier,
		}
	}

	var action models.Action

	switch {
	case targetInventory > 0 && product.Availability != models.AvailabilityAvailable:
		action = models.ActionEnable
	case targetInventory == 0 && product.Availability == models.AvailabilityAvailable:
		action = models.ActionDisable
	default:
		action = models.ActionUpdate
	}

	return models.Decision{
		Action:             action,
		TargetAvailability: targetAvailability,
		TargetInventory:    targetInventory,
		ChangeAvailability: changeAvailability,
		ChangeInventory:    changeInventory,
		Reason: fmt.Sprintf("%s: stock=%d -> inventory=%d, availability=%s",
			supplier, stock, targetInventory, targetAvailability),
		SupplierName: supplier,
	}
}

// IsClearanceItem reports whether a product's inventory is operator-managed.
// The explicit clearance flag is authoritative; the SKU markers are a legacy
// fallback only. A sale price by itself does not make a clearance item.
func IsClearanceItem(product models.StorefrontProduct) bool {
	if product.Clearance {
		return true
	}

	sku := strings.ToLower(product.SKU)

	return strings.HasPrefix(sku, "copy of") || strings.Contains(sku, "sale")
}

// CheckMargin flags products discounted beyond the margin-policy ceiling.
// Findings are advisory and never affect the mutation decision.
func CheckMargin(product models.StorefrontProduct, ceilingPercent float64) (models.MarginWarning, bool) {
	if product.SalePrice == 0 || product.Price <= 0 {
		return models.MarginWarning{}, false
	}

	discount := (product.Price - product.SalePrice) / product.Price * 100
	if discount <= ceilingPercent {
		return models.MarginWarning{}, false
	}

	return models.MarginWarning{
		SKU:             product.SKU,
		Name:            product.Name,
		Price:           product.Price,
		SalePrice:       product.SalePrice,
		DiscountPercent: discount,
		Message: fmt.Sprintf("sale price %.2f is %.1f%% below RRP %.2f (max %.0f%%)",
			product.SalePrice, discount, product.Price, ceilingPercent),
	}, true
}
