package engine

import (
	"github.com/shopspring/decimal"

	"platwatch/internal/domain"
)

// BestOrders selects the best buy and best sell offer from an item's
// order book, independently per side. Only eligible orders (online user,
// visible, base condition) are considered.
//
// Best sell is the lowest-priced sell offer, the cheapest way to acquire
// the item. Best buy is the highest-priced buy offer, the most a buyer
// will pay. Price ties break toward the higher-reputation user. A side
// with no qualifying orders returns nil; that is an empty market, not an
// error.
func BestOrders(orders []domain.Order) (bestBuy, bestSell *domain.Order) {
	for i := range orders {
		o := orders[i]
		if !o.Eligible() {
			continue
		}
		if o.IsSell() {
			if bestSell == nil || better(o, *bestSell, false) {
				c := o
				bestSell = &c
			}
		} else {
			if bestBuy == nil || better(o, *bestBuy, true) {
				c := o
				bestBuy = &c
			}
		}
	}
	return bestBuy, bestSell
}

// better reports whether candidate beats incumbent: by higher price for
// the buy side, lower price for the sell side, and reputation on ties.
func better(candidate, incumbent domain.Order, wantHigher bool) bool {
	switch candidate.Price.Cmp(incumbent.Price) {
	case 1:
		return wantHigher
	case -1:
		return !wantHigher
	default:
		return candidate.User.Reputation > incumbent.User.Reputation
	}
}

// Profit estimates the flip profit for an item given its best orders and
// rolling averages:
//
//	both sides:  max(bestBuy − bestSell, min(avg90, avg48) − bestSell)
//	sell only:   min(avg90, avg48) − bestSell
//	otherwise:   absent (nil)
//
// The sell-only branch substitutes the lower rolling average for the
// missing buy price.
func Profit(bestBuy, bestSell *domain.Order, avg48, avg90 decimal.Decimal) *decimal.Decimal {
	if bestSell == nil {
		return nil
	}
	minAvg := avg90
	if avg48.LessThan(minAvg) {
		minAvg = avg48
	}
	fallback := minAvg.Sub(bestSell.Price)
	if bestBuy == nil {
		return &fallback
	}
	flip := bestBuy.Price.Sub(bestSell.Price)
	if flip.GreaterThan(fallback) {
		return &flip
	}
	return &fallback
}
