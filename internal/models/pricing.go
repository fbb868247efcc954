package models

import "fmt"

// Pricing tiers for a site build, in rial. Totals are computed once at
// submission time and frozen on the order.
const (
	PlanBasic    = "basic"
	PlanStandard = "standard"
	PlanAdvanced = "advanced"
	PlanPremium  = "premium"
)

var planPrices = map[string]int64{
	PlanBasic:    10_000_000,
	PlanStandard: 15_000_000,
	PlanAdvanced: 20_000_000,
	PlanPremium:  30_000_000,
}

// PlanPrice returns the fixed total for a pricing plan. Unknown plans fall
// back to the premium price, matching the storefront's original behaviour.
func PlanPrice(plan string) int64 {
	if price, ok := planPrices[plan]; ok {
		return price
	}
	return planPrices[PlanPremium]
}

// PlanLineItem builds the single line item every submission carries.
func PlanLineItem(plan string) LineItem {
	return LineItem{
		Name:     fmt.Sprintf("site build (%s plan)", plan),
		Quantity: 1,
		Price:    PlanPrice(plan),
	}
}
