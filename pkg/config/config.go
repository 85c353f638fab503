// Package config holds the reconciliation engine's tunables: the per-supplier
// rule table, safety-gate thresholds, and pacing parameters.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// SupplierRule configures how one supplier's stock feed maps to target
// inventory. Suppliers not present in the table default to respecting the
// reported stock level.
type SupplierRule struct {
	Name string `json:"name" validate:"required"`
	// RespectActualStock uses the supplier's raw stock level as the target
	// inventory. When false, the binary rule applies: FixedInStockInventory
	// when stock > 0, zero otherwise.
	RespectActualStock    bool `json:"respect_actual_stock"`
	FixedInStockInventory int  `json:"fixed_in_stock_inventory" validate:"gte=0"`
}

// Config is the full engine configuration.
type Config struct {
	Suppliers []SupplierRule `json:"suppliers" validate:"dive"`

	// Freshness gate.
	StaleThresholdHours int `json:"stale_threshold_hours" validate:"gt=0"`

	// Anomaly gate.
	MaxDisableCount        int     `json:"max_disable_count"        validate:"gt=0"`
	DisablePercentCeiling  float64 `json:"disable_percent_ceiling"  validate:"gt=0,lte=100"`
	SupplierWipeoutPercent float64 `json:"supplier_wipeout_percent" validate:"gt=0,lte=100"`
	SupplierWipeoutFloor   int     `json:"supplier_wipeout_floor"   validate:"gte=0"`

	// Margin advisory.
	MarginDiscountPercent float64 `json:"margin_discount_percent" validate:"gt=0,lte=100"`

	// Pacing.
	RequestDelayMillis int `json:"request_delay_millis" validate:"gte=0"`
	PageSize           int `json:"page_size"            validate:"gt=0"`
	SnapshotBatchSize  int `json:"snapshot_batch_size"  validate:"gt=0"`
	ProgressInterval   int `json:"progress_interval"    validate:"gt=0"`

	// Reporting.
	ErrorDetailLimit int `json:"error_detail_limit" validate:"gt=0"`
	PreviewLimit     int `json:"preview_limit"      validate:"gt=0"`
}

// Default returns the production configuration observed in the field: the
// five known suppliers, a 24h staleness window, and the 500/15%/80%+10
// anomaly thresholds.
func Default() Config {
	return Config{
		Suppliers: []SupplierRule{
			{Name: "uhp", RespectActualStock: false, FixedInStockInventory: 1000},
			{Name: "oborne", RespectActualStock: false, FixedInStockInventory: 1000},
			{Name: "kadac", RespectActualStock: false, FixedInStockInventory: 1000},
			{Name: "unleashed", RespectActualStock: true},
			{Name: "elevate", RespectActualStock: true},
		},
		StaleThresholdHours:    24,
		MaxDisableCount:        500,
		DisablePercentCeiling:  15,
		SupplierWipeoutPercent: 80,
		SupplierWipeoutFloor:   10,
		MarginDiscountPercent:  8,
		RequestDelayMillis:     250,
		PageSize:               1000,
		SnapshotBatchSize:      100,
		ProgressInterval:       50,
		ErrorDetailLimit:       20,
		PreviewLimit:           5,
	}
}

// Load reads a JSON config file over the defaults. The file is validated
// against the embedded schema before unmarshalling so malformed rule tables
// fail fast with a field-level message.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return cfg, fmt.Errorf("failed to validate config file %s: %w", path, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return cfg, fmt.Errorf("config file %s is invalid: %s", path, strings.Join(details, "; "))
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate applies struct-level validation rules.
func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// RuleFor resolves the rule for a supplier by case-insensitive name.
// Unknown suppliers respect actual stock.
func (c Config) RuleFor(supplier string) SupplierRule {
	name := strings.ToLower(strings.TrimSpace(supplier))
	for _, rule := range c.Suppliers {
		if strings.ToLower(rule.Name) == name {
			return rule
		}
	}

	return SupplierRule{Name: name, RespectActualStock: true}
}

// StaleThreshold returns the freshness window as a duration.
func (c Config) StaleThreshold() time.Duration {
	return time.Duration(c.StaleThresholdHours) * time.Hour
}

// RequestDelay returns the inter-request pause as a duration.
func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMillis) * time.Millisecond
}
