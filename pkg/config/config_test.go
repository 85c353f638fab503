package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Suppliers, 5)
	assert.Equal(t, 24, cfg.StaleThresholdHours)
	assert.Equal(t, 500, cfg.MaxDisableCount)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestDelay())
	assert.Equal(t, 24*time.Hour, cfg.StaleThreshold())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"stale_threshold_hours": 48,
		"max_disable_count": 100
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 48, cfg.StaleThresholdHours)
	assert.Equal(t, 100, cfg.MaxDisableCount)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1000, cfg.PageSize)
	assert.Len(t, cfg.Suppliers, 5)
}

func TestLoad_SupplierRules(t *testing.T) {
	path := writeConfig(t, `{
		"suppliers": [
			{"name": "acme", "respect_actual_stock": false, "fixed_in_stock_inventory": 500}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	rule := cfg.RuleFor("ACME")
	assert.False(t, rule.RespectActualStock)
	assert.Equal(t, 500, rule.FixedInStockInventory)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `{"stale_treshold_hours": 48}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestLoad_RejectsWrongTypes(t *testing.T) {
	path := writeConfig(t, `{"max_disable_count": "lots"}`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestRuleFor_UnknownSupplierRespectsActualStock(t *testing.T) {
	cfg := Default()

	rule := cfg.RuleFor("brand-new-supplier")
	assert.True(t, rule.RespectActualStock)
	assert.Equal(t, 0, rule.FixedInStockInventory)
}

func TestValidate_RejectsZeroThreshold(t *testing.T) {
	cfg := Default()
	cfg.StaleThresholdHours = 0

	require.Error(t, cfg.Validate())
}
