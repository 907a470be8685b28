package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"platwatch/internal/domain"
)

func sellOrder(price int64, rep int) domain.Order {
	return domain.Order{
		Price:   decimal.NewFromInt(price),
		Side:    domain.SideSell,
		Visible: true,
		User:    domain.Trader{Name: "seller", Reputation: rep, Online: true},
	}
}

func buyOrder(price int64, rep int) domain.Order {
	return domain.Order{
		Price:   decimal.NewFromInt(price),
		Side:    domain.SideBuy,
		Visible: true,
		User:    domain.Trader{Name: "buyer", Reputation: rep, Online: true},
	}
}

func TestBestOrders_SelectsBestPerSide(t *testing.T) {
	orders := []domain.Order{
		sellOrder(120, 1),
		sellOrder(110, 1),
		sellOrder(115, 1),
		buyOrder(80, 1),
		buyOrder(90, 1),
		buyOrder(85, 1),
	}

	bestBuy, bestSell := BestOrders(orders)
	if bestBuy == nil || bestSell == nil {
		t.Fatal("both sides should resolve")
	}
	if !bestBuy.Price.Equal(decimal.NewFromInt(90)) {
		t.Errorf("best buy = %v, want 90", bestBuy.Price)
	}
	if !bestSell.Price.Equal(decimal.NewFromInt(110)) {
		t.Errorf("best sell = %v, want 110", bestSell.Price)
	}

	// The chosen prices dominate every other qualifying order.
	for _, o := range orders {
		if !o.Eligible() {
			continue
		}
		if o.IsSell() && o.Price.LessThan(bestSell.Price) {
			t.Errorf("sell order %v beats selected %v", o.Price, bestSell.Price)
		}
		if !o.IsSell() && o.Price.GreaterThan(bestBuy.Price) {
			t.Errorf("buy order %v beats selected %v", o.Price, bestBuy.Price)
		}
	}
}

func TestBestOrders_EligibilityFilter(t *testing.T) {
	offline := sellOrder(1, 99)
	offline.User.Online = false

	invisible := sellOrder(2, 99)
	invisible.Visible = false

	upgraded := sellOrder(3, 99)
	upgraded.Level = 2

	orders := []domain.Order{offline, invisible, upgraded, sellOrder(50, 1)}

	_, bestSell := BestOrders(orders)
	if bestSell == nil {
		t.Fatal("qualifying sell order should be selected")
	}
	if !bestSell.Price.Equal(decimal.NewFromInt(50)) {
		t.Errorf("best sell = %v, want 50 (filtered orders must never win)", bestSell.Price)
	}
}

func TestBestOrders_ReputationTieBreak(t *testing.T) {
	bestBuy, bestSell := BestOrders([]domain.Order{
		buyOrder(90, 5),
		buyOrder(90, 10),
		sellOrder(110, 3),
		sellOrder(110, 8),
	})

	if bestBuy == nil || bestBuy.User.Reputation != 10 {
		t.Errorf("buy tie should break to reputation 10, got %+v", bestBuy)
	}
	if bestSell == nil || bestSell.User.Reputation != 8 {
		t.Errorf("sell tie should break to reputation 8, got %+v", bestSell)
	}
}

func TestBestOrders_AbsentSides(t *testing.T) {
	bestBuy, bestSell := BestOrders([]domain.Order{sellOrder(100, 1)})
	if bestBuy != nil {
		t.Error("no buy orders: best buy should be absent")
	}
	if bestSell == nil {
		t.Error("sell side should resolve")
	}

	bestBuy, bestSell = BestOrders(nil)
	if bestBuy != nil || bestSell != nil {
		t.Error("empty order book should resolve to absent sides")
	}
}

func TestProfit_BothSides(t *testing.T) {
	buy := buyOrder(90, 1)
	sell := sellOrder(110, 1)

	// max(90-110, min(100, 95)-110) = max(-20, -15) = -15
	p := Profit(&buy, &sell, decimal.NewFromInt(95), decimal.NewFromInt(100))
	if p == nil {
		t.Fatal("profit should resolve")
	}
	if !p.Equal(decimal.NewFromInt(-15)) {
		t.Errorf("profit = %v, want -15", p)
	}
}

func TestProfit_FlipWins(t *testing.T) {
	buy := buyOrder(150, 1)
	sell := sellOrder(100, 1)

	// max(150-100, min(120, 110)-100) = max(50, 10) = 50
	p := Profit(&buy, &sell, decimal.NewFromInt(110), decimal.NewFromInt(120))
	if p == nil || !p.Equal(decimal.NewFromInt(50)) {
		t.Errorf("profit = %v, want 50", p)
	}
}

func TestProfit_SellOnlyFallsBackToAverages(t *testing.T) {
	sell := sellOrder(100, 1)

	// min(120, 110) - 100 = 10
	p := Profit(nil, &sell, decimal.NewFromInt(110), decimal.NewFromInt(120))
	if p == nil || !p.Equal(decimal.NewFromInt(10)) {
		t.Errorf("profit = %v, want 10", p)
	}
}

func TestProfit_NoSellOrder(t *testing.T) {
	buy := buyOrder(100, 1)
	if p := Profit(&buy, nil, decimal.NewFromInt(1), decimal.NewFromInt(2)); p != nil {
		t.Errorf("profit without a sell order should be absent, got %v", p)
	}
	if p := Profit(nil, nil, decimal.NewFromInt(1), decimal.NewFromInt(2)); p != nil {
		t.Errorf("profit without any orders should be absent, got %v", p)
	}
}
