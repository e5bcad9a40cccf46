package payments

import (
	"fmt"
	"time"
)

// Canonical plan codes.
const (
	PlanWeekly   = "weekly"
	PlanBiweekly = "biweekly"
	PlanMonthly  = "monthly"
)

// Plan is one purchasable subscription period.
type Plan struct {
	Code string
	Days int // 0 means one calendar month
}

// PeriodEnd computes the grant expiry for a period starting at from.
func (p Plan) PeriodEnd(from time.Time) time.Time {
	if p.Code == PlanMonthly {
		return from.AddDate(0, 1, 0)
	}
	return from.Add(time.Duration(p.Days) * 24 * time.Hour)
}

var (
	weekly   = Plan{Code: PlanWeekly, Days: 7}
	biweekly = Plan{Code: PlanBiweekly, Days: 14}
	monthly  = Plan{Code: PlanMonthly}
)

// plansByProduct is the exhaustive product-id lookup table. It is
// maintained alongside the checkout-creation code: every product id a
// checkout session can be created with must appear here. An id missing
// from this table is a hard classification failure, never a silent
// default, since defaulting would under- or over-grant access.
var plansByProduct = map[string]Plan{
	// canonical codes, usable directly as product ids
	PlanWeekly:   weekly,
	PlanBiweekly: biweekly,
	PlanMonthly:  monthly,

	// checkout product ids (both providers share these)
	"premium_weekly":   weekly,
	"premium_biweekly": biweekly,
	"premium_monthly":  monthly,

	// Paystack plan codes
	"PLN_premium_weekly":   weekly,
	"PLN_premium_biweekly": biweekly,
	"PLN_premium_monthly":  monthly,
}

// UnknownProductError reports a product id absent from the plan table.
type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("payments: unknown product id %q", e.ProductID)
}

// PlanForProduct maps a provider product id to its canonical plan.
func PlanForProduct(productID string) (Plan, error) {
	plan, ok := plansByProduct[productID]
	if !ok {
		return Plan{}, &UnknownProductError{ProductID: productID}
	}
	return plan, nil
}
