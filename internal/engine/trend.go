package engine

import (
	"github.com/shopspring/decimal"

	"platwatch/internal/domain"
)

// LinearTrend is an ordinary least-squares fit y = Slope*x + Intercept
// over a sample sequence, with x the sequence index and y the price.
type LinearTrend struct {
	Slope     float64
	Intercept float64
}

// Direction classifies the trend by the sign of its slope.
func (t LinearTrend) Direction() domain.Trend {
	switch {
	case t.Slope < 0:
		return domain.TrendDecreasing
	case t.Slope > 0:
		return domain.TrendIncreasing
	default:
		return domain.TrendEven
	}
}

// FitTrend computes the least-squares line over the samples using the
// closed-form slope a = (nΣxy − ΣxΣy)/(nΣx² − (Σx)²) and intercept
// b = (Σy − aΣx)/n. Degenerate input (fewer than two samples, or a zero
// denominator) yields the zero trend, which classifies as Even; the
// caller never sees NaN.
func FitTrend(samples []domain.PriceSample) LinearTrend {
	n := float64(len(samples))
	if len(samples) < 2 {
		return LinearTrend{}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, s := range samples {
		x := float64(i)
		y := s.Median.InexactFloat64()
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return LinearTrend{}
	}

	a := (n*sumXY - sumX*sumY) / denom
	b := (sumY - a*sumX) / n
	return LinearTrend{Slope: a, Intercept: b}
}

// Mean returns the arithmetic mean of the sample medians.
// An empty sequence has mean zero, by policy rather than error.
func Mean(samples []domain.PriceSample) decimal.Decimal {
	if len(samples) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, s := range samples {
		sum = sum.Add(s.Median)
	}
	return sum.Div(decimal.NewFromInt(int64(len(samples))))
}
