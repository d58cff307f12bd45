package aggregate

import (
	"sort"
	"time"

	"rfm-segments/pkg/models"

	"github.com/shopspring/decimal"
)

// RevenueSeries groups txns by calendar month and returns one point per month
// from the first to the last month present. Months without transactions are
// kept as zero points. window > 0 keeps only the trailing window months.
func RevenueSeries(txns []models.Transaction, window int) []models.MonthlyRevenuePoint {
	if len(txns) == 0 {
		return []models.MonthlyRevenuePoint{}
	}

	buckets := map[string]*models.MonthlyRevenuePoint{}
	first, last := monthRange(txns)
	months := monthsBetweenInclusive(first, last)
	out := make([]models.MonthlyRevenuePoint, len(months))
	for i, m := range months {
		out[i] = models.MonthlyRevenuePoint{
			Period:      models.PeriodKey(m),
			PeriodStart: m,
			Revenue:     decimal.Zero,
		}
		buckets[out[i].Period] = &out[i]
	}

	for _, t := range txns {
		p := buckets[models.PeriodKey(t.Date)]
		p.Revenue = p.Revenue.Add(t.Amount)
		p.TransactionCount++
	}
	return tail(out, window)
}

// GrowthSeries counts, per calendar month, the customers whose first
// transaction falls in that month. Cumulative totals run over the full
// history, so a windowed series keeps the all-time cumulative values.
func GrowthSeries(txns []models.Transaction, window int) []models.CustomerGrowthPoint {
	if len(txns) == 0 {
		return []models.CustomerGrowthPoint{}
	}

	sorted := make([]models.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	seen := map[string]struct{}{}
	newByPeriod := map[string]int{}
	for _, t := range sorted {
		if _, ok := seen[t.CustomerID]; ok {
			continue
		}
		seen[t.CustomerID] = struct{}{}
		newByPeriod[models.PeriodKey(t.Date)]++
	}

	months := monthsBetweenInclusive(models.MonthStart(sorted[0].Date), models.MonthStart(sorted[len(sorted)-1].Date))
	out := make([]models.CustomerGrowthPoint, len(months))
	cumulative := 0
	for i, m := range months {
		key := models.PeriodKey(m)
		cumulative += newByPeriod[key]
		out[i] = models.CustomerGrowthPoint{
			Period:              key,
			PeriodStart:         m,
			NewCustomers:        newByPeriod[key],
			CumulativeCustomers: cumulative,
		}
	}
	return tail(out, window)
}

func monthRange(txns []models.Transaction) (time.Time, time.Time) {
	first, last := txns[0].Date, txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}
	return models.MonthStart(first), models.MonthStart(last)
}

func monthsBetweenInclusive(start, end time.Time) []time.Time {
	cur := models.MonthStart(start)
	last := models.MonthStart(end)
	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

func tail[T any](s []T, window int) []T {
	if window <= 0 || window >= len(s) {
		return s
	}
	return s[len(s)-window:]
}
