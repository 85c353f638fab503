package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storeops/stocksync/pkg/config"
	"github.com/storeops/stocksync/pkg/models"
)

func testLink(supplier, sku string, stock int, availability models.Availability, inventory int) *models.LinkedProduct {
	return &models.LinkedProduct{
		Link: models.SupplierLink{
			ID:                  "link-" + sku,
			StorefrontProductID: "sf-" + sku,
			SupplierProductID:   "sp-" + sku,
			SupplierName:        supplier,
			Active:              true,
		},
		Supplier: models.SupplierProduct{
			ID:          "sp-" + sku,
			SupplierSKU: sku,
			StockLevel:  stock,
		},
		Storefront: models.StorefrontProduct{
			ID:                "sf-" + sku,
			PlatformProductID: 1000,
			SKU:               sku,
			Name:              "Product " + sku,
			Availability:      availability,
			InventoryLevel:    inventory,
			Visible:           true,
		},
	}
}

func TestDecide_BinarySupplierInStock(t *testing.T) {
	cfg := config.Default()

	// One unit from a fixed-inventory supplier maps to the fixed level.
	link := testLink("uhp", "UHP-001", 1, models.AvailabilityDisabled, 0)
	decision := Decide(link, cfg)

	assert.Equal(t, models.ActionEnable, decision.Action)
	assert.Equal(t, models.AvailabilityAvailable, decision.TargetAvailability)
	assert.Equal(t, 1000, decision.TargetInventory)
	assert.True(t, decision.ChangeAvailability)
	assert.True(t, decision.ChangeInventory)
	assert.Equal(t, "uhp", decision.SupplierName)
}

func TestDecide_BinarySupplierOutOfStock(t *testing.T) {
	cfg := config.Default()

	link := testLink("oborne", "OB-001", 0, models.AvailabilityAvailable, 1000)
	decision := Decide(link, cfg)

	assert.Equal(t, models.ActionDisable, decision.Action)
	assert.Equal(t, models.AvailabilityDisabled, decision.TargetAvailability)
	assert.Equal(t, 0, decision.TargetInventory)
}

func TestDecide_RespectActualStock(t *testing.T) {
	cfg := config.Default()

	link := testLink("unleashed", "UN-001", 37, models.AvailabilityAvailable, 12)
	decision := Decide(link, cfg)

	assert.Equal(t, models.ActionUpdate, decision.Action)
	assert.Equal(t, 37, decision.TargetInventory)
	assert.False(t, decision.ChangeAvailability)
	assert.True(t, decision.ChangeInventory)
}

func TestDecide_UnknownSupplierRespectsActualStock(t *testing.T) {
	cfg := config.Default()

	link := testLink("newsupplier", "NS-001", 5, models.AvailabilityDisabled, 0)
	decision := Decide(link, cfg)

	assert.Equal(t, models.ActionEnable, decision.Action)
	assert.Equal(t, 5, decision.TargetInventory)
}

func TestDecide_SupplierNameCaseInsensitive(t *testing.T) {
	cfg := config.Default()

	link := testLink("UHP", "UHP-002", 3, models.AvailabilityDisabled, 0)
	decision := Decide(link, cfg)

	assert.Equal(t, 1000, decision.TargetInventory)
}

func TestDecide_NegativeStockClampedToZero(t *testing.T) {
	cfg := config.Default()

	link := testLink("unleashed", "UN-002", -4, models.AvailabilityAvailable, 10)
	decision := Decide(link, cfg)

	assert.Equal(t, models.ActionDisable, decision.Action)
	assert.Equal(t, 0, decision.TargetInventory)
}

func TestDecide_NoChangeWhenStateMatches(t *testing.T) {
	cfg := config.Default()

	link := testLink("kadac", "KD-001", 8, models.AvailabilityAvailable, 1000)
	decision := Decide(link, cfg)

	assert.Equal(t, models.ActionNone, decision.Action)
}

func TestDecide_ClearanceFlagSkips(t *testing.T) {
	cfg := config.Default()

	// A flagged clearance item is skipped no matter how much stock exists.
	link := testLink("unleashed", "CL-001", 500, models.AvailabilityAvailable, 2)
	link.Storefront.Clearance = true

	decision := Decide(link, cfg)

	assert.Equal(t, models.ActionSkip, decision.Action)
	assert.Contains(t, decision.Reason, "clearance")
}

func TestIsClearanceItem_SKUMarkers(t *testing.T) {
	assert.True(t, IsClearanceItem(models.StorefrontProduct{SKU: "Copy of ABC-123"}))
	assert.True(t, IsClearanceItem(models.StorefrontProduct{SKU: "ABC-SALE-01"}))
	assert.False(t, IsClearanceItem(models.StorefrontProduct{SKU: "ABC-123"}))
}

func TestIsClearanceItem_SalePriceAloneIsNotClearance(t *testing.T) {
	product := models.StorefrontProduct{SKU: "ABC-123", Price: 100, SalePrice: 50}

	assert.False(t, IsClearanceItem(product))
}

func TestCheckMargin(t *testing.T) {
	warning, flagged := CheckMargin(models.StorefrontProduct{
		SKU: "MG-001", Price: 100, SalePrice: 80,
	}, 8)

	assert.True(t, flagged)
	assert.InDelta(t, 20.0, warning.DiscountPercent, 0.001)
	assert.Contains(t, warning.Message, "20.0%")
}

func TestCheckMargin_WithinCeiling(t *testing.T) {
	_, flagged := CheckMargin(models.StorefrontProduct{
		SKU: "MG-002", Price: 100, SalePrice: 95,
	}, 8)

	assert.False(t, flagged)
}

func TestCheckMargin_NoSalePrice(t *testing.T) {
	_, flagged := CheckMargin(models.StorefrontProduct{
		SKU: "MG-003", Price: 100,
	}, 8)

	assert.False(t, flagged)
}
