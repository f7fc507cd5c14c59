package service

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// OutlierFilterNone disables outlier filtering
const OutlierFilterNone = "none"

// parseOutlierFilter extracts the IQR multiplier from a filter name like
// "iqr_1.5". Returns ok=false for "none", empty, or unparseable input.
func parseOutlierFilter(filter string) (float64, bool) {
	if filter == "" || filter == OutlierFilterNone {
		return 0, false
	}
	multiplier, err := strconv.ParseFloat(strings.TrimPrefix(filter, "iqr_"), 64)
	if err != nil {
		return 0, false
	}
	return multiplier, true
}

// outlierBounds computes the IQR fence for a price sample at the given
// multiplier. An empty sample yields an unbounded fence.
func outlierBounds(prices []float64, multiplier float64) (lower, upper float64) {
	if len(prices) == 0 {
		return math.Inf(-1), math.Inf(1)
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	q1 := sorted[len(sorted)/4]
	q3 := sorted[len(sorted)*3/4]
	fence := (q3 - q1) * multiplier

	return q1 - fence, q3 + fence
}

// filterOutliers drops orders priced outside the IQR fence of their own
// side. The fence is computed per call from the orders given.
func filterOutliers(orders []model.MarketOrder, multiplier float64) []model.MarketOrder {
	if len(orders) == 0 {
		return orders
	}

	prices := make([]float64, len(orders))
	for i, order := range orders {
		prices[i] = order.Price
	}

	lower, upper := outlierBounds(prices, multiplier)

	filtered := make([]model.MarketOrder, 0, len(orders))
	for _, order := range orders {
		if order.Price >= lower && order.Price <= upper {
			filtered = append(filtered, order)
		}
	}
	return filtered
}
