package reconcile

import (
	"fmt"
	"sort"

	"github.com/storeops/stocksync/pkg/config"
	"github.com/storeops/stocksync/pkg/models"
)

// DetectAnomalies runs the blast-radius checks over a computed plan. A plan
// that would disable an implausible share of the catalog usually means a
// broken feed upstream, not a real stock event.
func DetectAnomalies(plan *Plan, cfg config.Config) []models.Anomaly {
	var anomalies []models.Anomaly

	disableCount := len(plan.Disable)

	if disableCount > cfg.MaxDisableCount {
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyExcessiveDisable,
			Severity: models.SeverityCritical,
			Message: fmt.Sprintf("%d products would be disabled, exceeding the limit of %d",
				disableCount, cfg.MaxDisableCount),
		})
	}

	if plan.TotalLinks > 0 {
		percent := float64(disableCount) / float64(plan.TotalLinks) * 100
		if percent > cfg.DisablePercentCeiling {
			anomalies = append(anomalies, models.Anomaly{
				Type:     models.AnomalyHighDisablePercentage,
				Severity: models.SeverityWarning,
				Message: fmt.Sprintf("%.1f%% of %d linked products would be disabled (ceiling %.0f%%)",
					percent, plan.TotalLinks, cfg.DisablePercentCeiling),
			})
		}
	}

	anomalies = append(anomalies, detectWipeouts(plan, cfg)...)

	return anomalies
}

// detectWipeouts flags suppliers whose links are almost entirely disabled by
// one plan. Suppliers are visited in name order for stable output.
func detectWipeouts(plan *Plan, cfg config.Config) []models.Anomaly {
	disabledBySupplier := make(map[string]int)
	for _, item := range plan.Disable {
		disabledBySupplier[item.Decision.SupplierName]++
	}

	suppliers := make([]string, 0, len(disabledBySupplier))
	for supplier := range disabledBySupplier {
		suppliers = append(suppliers, supplier)
	}

	sort.Strings(suppliers)

	var anomalies []models.Anomaly

	for _, supplier := range suppliers {
		disabled := disabledBySupplier[supplier]
		total := plan.SupplierTotals[supplier]

		if total == 0 || disabled <= cfg.SupplierWipeoutFloor {
			continue
		}

		percent := float64(disabled) / float64(total) * 100
		if percent > cfg.SupplierWipeoutPercent {
			anomalies = append(anomalies, models.Anomaly{
				Type:     models.AnomalySupplierWipeout,
				Severity: models.SeverityCritical,
				Message: fmt.Sprintf("supplier %s: %d of %d links (%.1f%%) would be disabled",
					supplier, disabled, total, percent),
			})
		}
	}

	return anomalies
}

// HasCritical reports whether any finding is severe enough to block a live run.
func HasCritical(anomalies []models.Anomaly) bool {
	for _, anomaly := range anomalies {
		if anomaly.Severity == models.SeverityCritical {
			return true
		}
	}

	return false
}
