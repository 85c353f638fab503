// Package models defines the core domain models for supplier-to-storefront
// inventory reconciliation.
package models

import "time"

// Availability is the published state of a storefront product.
type Availability string

const (
	AvailabilityAvailable Availability = "available" // Purchasable on the storefront
	AvailabilityDisabled  Availability = "disabled"  // Hidden from purchase
)

// SupplierLink joins one supplier feed row to one storefront catalog product.
// Links are created and maintained by the upstream product-matching process;
// the reconciliation engine only ever reads them.
type SupplierLink struct {
	ID                  string `json:"id"`
	StorefrontProductID string `json:"storefront_product_id"`
	SupplierProductID   string `json:"supplier_product_id"`
	SupplierName        string `json:"supplier_name"`
	Active              bool   `json:"active"`
}

// SupplierProduct is the supplier-reported state for one feed row. It is
// owned by the supplier-sync subsystem and treated as an immutable snapshot
// for the duration of a run.
type SupplierProduct struct {
	ID           string    `json:"id"`
	SupplierSKU  string    `json:"supplier_sku"`
	ProductName  string    `json:"product_name"`
	StockLevel   int       `json:"stock_level"`
	Availability string    `json:"availability"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// StorefrontProduct mirrors the commerce platform's current state of one
// catalog product.
type StorefrontProduct struct {
	// ID is the catalog store row identifier.
	ID string `json:"id"`
	// PlatformProductID is the product identifier on the commerce platform,
	// used for external mutation calls.
	PlatformProductID int64        `json:"product_id"`
	SKU               string       `json:"sku"`
	Name              string       `json:"name"`
	Availability      Availability `json:"availability"`
	InventoryLevel    int          `json:"inventory_level"`
	Visible           bool         `json:"is_visible"`
	Price             float64      `json:"price"`
	SalePrice         float64      `json:"sale_price"`
	Clearance         bool         `json:"is_clearance"`
}

// LinkedProduct is one active link eagerly joined with its supplier and
// storefront state, as returned by the link reader.
type LinkedProduct struct {
	Link       SupplierLink      `json:"link"`
	Supplier   SupplierProduct   `json:"supplier"`
	Storefront StorefrontProduct `json:"storefront"`
}
