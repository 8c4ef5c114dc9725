// Package costs normalizes vendor-reported seat costs to one canonical
// monthly figure.
package costs

import (
	"sort"
	"strings"

	"github.com/Kiefer-Networks/licence-manager/internal/directory"
	"github.com/Kiefer-Networks/licence-manager/internal/models"
)

// MonthlyCost converts an amount billed at the given cycle to its monthly
// equivalent. Perpetual and one-time purchases carry no recurring cost.
func MonthlyCost(amount float64, cycle models.BillingCycle) float64 {
	switch cycle {
	case models.BillingCycleYearly:
		return amount / 12
	case models.BillingCycleQuarterly:
		return amount / 3
	case models.BillingCyclePerpetual, models.BillingCycleOneTime:
		return 0
	default:
		// Monthly, or an unknown cycle reported as-is.
		return amount
	}
}

// SplitLicenseType splits a combined license-type string ("E5, Power BI,
// Teams") into trimmed components. Single types come back as one element.
func SplitLicenseType(licenseType string) []string {
	parts := strings.Split(licenseType, ",")
	components := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			components = append(components, trimmed)
		}
	}
	return components
}

// NormalizeLicenseType sorts a combined license-type string's components
// alphabetically so "E5, Power BI" and "Power BI, E5" store as one key.
func NormalizeLicenseType(licenseType string) string {
	components := SplitLicenseType(licenseType)
	sort.Slice(components, func(i, j int) bool {
		return directory.Fold(components[i]) < directory.Fold(components[j])
	})
	return strings.Join(components, ", ")
}

// Normalizer prices license types from a per-component price book.
type Normalizer struct {
	prices map[string]float64
}

// NewNormalizer creates a Normalizer with an empty price book.
func NewNormalizer() *Normalizer {
	return &Normalizer{prices: make(map[string]float64)}
}

// SetComponentPrice configures the monthly price for one license-type
// component. Lookup is case-insensitive.
func (n *Normalizer) SetComponentPrice(component string, monthly float64) {
	n.prices[directory.Fold(strings.TrimSpace(component))] = monthly
}

// ComponentPrice returns the configured monthly price for one component.
func (n *Normalizer) ComponentPrice(component string) (float64, bool) {
	price, ok := n.prices[directory.Fold(strings.TrimSpace(component))]
	return price, ok
}

// LicenseTypeCost prices a possibly combined license-type string: the sum
// of each component's configured monthly price. A component with no
// configured price contributes 0 rather than erroring, so partially
// configured price books still produce useful totals.
func (n *Normalizer) LicenseTypeCost(licenseType string) float64 {
	var total float64
	for _, component := range SplitLicenseType(licenseType) {
		if price, ok := n.ComponentPrice(component); ok {
			total += price
		}
	}
	return total
}

// RecordMonthlyCost computes the canonical monthly cost for one raw seat
// record. A vendor-reported cost wins, converted from the record's billing
// cycle (falling back to the vendor's); otherwise the license type is
// priced from the component price book.
func (n *Normalizer) RecordMonthlyCost(cost *float64, recordCycle, vendorCycle models.BillingCycle, licenseType string) float64 {
	if cost != nil {
		cycle := recordCycle
		if cycle == "" {
			cycle = vendorCycle
		}
		return MonthlyCost(*cost, cycle)
	}
	if licenseType != "" {
		return n.LicenseTypeCost(licenseType)
	}
	return 0
}
