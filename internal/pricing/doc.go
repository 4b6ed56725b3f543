// Package pricing holds the request-time price computations of the storefront:
// product promotions, promo-code validation, weight-tiered shipping rates and
// the cart aggregate built from them.
//
// Every function here works on rows the caller already loaded and takes the
// evaluation instant explicitly. Nothing is cached, so an expired promotion or
// code stops applying on the next computation.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// withinWindow reports whether now lies in [start, end]. A nil bound is open.
func withinWindow(start, end *time.Time, now time.Time) bool {
	if start != nil && now.Before(*start) {
		return false
	}
	if end != nil && now.After(*end) {
		return false
	}
	return true
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
