package aggregate

import (
	"sort"

	"rfm-segments/pkg/models"
	"rfm-segments/pkg/segment"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SegmentSummaries returns one row per segment present in customers, ordered
// by total revenue descending (ties by segment name).
func SegmentSummaries(customers []models.CustomerSegment) []models.SegmentSummary {
	if len(customers) == 0 {
		return []models.SegmentSummary{}
	}

	total := decimal.NewFromInt(int64(len(customers)))
	groups := lo.GroupBy(customers, func(c models.CustomerSegment) segment.Segment { return c.Segment })

	out := make([]models.SegmentSummary, 0, len(groups))
	for seg, members := range groups {
		count := decimal.NewFromInt(int64(len(members)))
		revenue := sumSpend(members)
		out = append(out, models.SegmentSummary{
			Segment:       seg,
			CustomerCount: len(members),
			Percentage:    count.Mul(hundred).Div(total),
			AvgSpend:      revenue.Div(count),
			TotalRevenue:  revenue,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalRevenue.Cmp(out[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return out[i].Segment.String() < out[j].Segment.String()
	})
	return out
}

// SegmentStats holds the headline numbers of one segment's detail page.
type SegmentStats struct {
	TotalCustomers int             `json:"total_customers"`
	AvgSpend       decimal.Decimal `json:"avg_spend"`
	AvgFrequency   decimal.Decimal `json:"avg_frequency"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

// Members returns the customers assigned to seg, highest spend first.
func Members(customers []models.CustomerSegment, seg segment.Segment) []models.CustomerSegment {
	members := lo.Filter(customers, func(c models.CustomerSegment, _ int) bool { return c.Segment == seg })
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].TotalSpend.GreaterThan(members[j].TotalSpend)
	})
	return members
}

// StatsFor computes the detail statistics of seg. An empty segment yields zeros.
func StatsFor(customers []models.CustomerSegment, seg segment.Segment) SegmentStats {
	members := lo.Filter(customers, func(c models.CustomerSegment, _ int) bool { return c.Segment == seg })
	stats := SegmentStats{
		TotalCustomers: len(members),
		AvgSpend:       decimal.Zero,
		AvgFrequency:   decimal.Zero,
		TotalRevenue:   sumSpend(members),
	}
	if len(members) == 0 {
		return stats
	}
	n := decimal.NewFromInt(int64(len(members)))
	txCount := lo.SumBy(members, func(c models.CustomerSegment) int { return c.TotalTransactions })
	stats.AvgSpend = stats.TotalRevenue.Div(n)
	stats.AvgFrequency = decimal.NewFromInt(int64(txCount)).Div(n)
	return stats
}

func sumSpend(customers []models.CustomerSegment) decimal.Decimal {
	return lo.Reduce(customers, func(acc decimal.Decimal, c models.CustomerSegment, _ int) decimal.Decimal {
		return acc.Add(c.TotalSpend)
	}, decimal.Zero)
}
