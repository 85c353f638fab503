package reconcile

import (
	"sort"
	"time"

	"github.com/storeops/stocksync/pkg/models"
)

// FreshnessReport is the freshness gate's verdict over every supplier feed.
type FreshnessReport struct {
	Fresh []models.SupplierFreshness
	Stale []models.SupplierFreshness
}

// Blocked reports whether any supplier feed exceeded the staleness window.
func (r FreshnessReport) Blocked() bool {
	return len(r.Stale) > 0
}

// EvaluateFreshness partitions suppliers by feed age against the threshold.
// Results are sorted by supplier name so reports and log output are stable.
func EvaluateFreshness(lastSync map[string]time.Time, now time.Time, threshold time.Duration) FreshnessReport {
	var report FreshnessReport

	suppliers := make([]string, 0, len(lastSync))
	for supplier := range lastSync {
		suppliers = append(suppliers, supplier)
	}

	sort.Strings(suppliers)

	for _, supplier := range suppliers {
		syncedAt := lastSync[supplier]
		age := now.Sub(syncedAt)

		entry := models.SupplierFreshness{
			Supplier:     supplier,
			LastSyncedAt: syncedAt,
			AgeHours:     age.Hours(),
		}

		if age > threshold {
			report.Stale = append(report.Stale, entry)
		} else {
			report.Fresh = append(report.Fresh, entry)
		}
	}

	return report
}
