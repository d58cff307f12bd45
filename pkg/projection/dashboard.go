package projection

import (
	"strconv"
	"strings"
	"time"

	"rfm-segments/pkg/aggregate"
	"rfm-segments/pkg/models"
	"rfm-segments/pkg/segment"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	moneyPlaces   = 2
	percentPlaces = 1
)

// BuildDashboard assembles the dashboard from already computed parts.
func BuildDashboard(
	overview aggregate.Overview,
	summaries []models.SegmentSummary,
	revenue []models.MonthlyRevenuePoint,
	growth []models.CustomerGrowthPoint,
) Dashboard {
	return Dashboard{
		Metrics:    metricCards(overview),
		Overview:   overview,
		Segments:   lo.Map(summaries, func(s models.SegmentSummary, _ int) SegmentRow { return segmentRow(s) }),
		Revenue:    revenueChart(revenue),
		Growth:     growthChart(growth),
		SegmentPie: segmentPie(summaries),
	}
}

func metricCards(o aggregate.Overview) []StatCard {
	return []StatCard{
		{Key: "total_customers", Title: "Total Customers", Value: FormatCount(int64(o.TotalCustomers))},
		{Key: "total_transactions", Title: "Total Transactions", Value: FormatCount(int64(o.TotalTransactions))},
		{Key: "avg_spend", Title: "Average Spend", Value: FormatCurrency(o.AvgSpend)},
		{Key: "total_revenue", Title: "Total Revenue", Value: FormatCurrency(o.TotalRevenue)},
	}
}

func segmentRow(s models.SegmentSummary) SegmentRow {
	return SegmentRow{
		SegmentName:   s.Segment.String(),
		CustomerCount: s.CustomerCount,
		Percentage:    s.Percentage.Round(percentPlaces),
		AvgSpend:      s.AvgSpend.Round(moneyPlaces),
		TotalRevenue:  s.TotalRevenue.Round(moneyPlaces),
		Color:         s.Segment.Color(),
	}
}

func revenueChart(points []models.MonthlyRevenuePoint) ChartData {
	labels := make([]string, len(points))
	revenue := make([]decimal.Decimal, len(points))
	count := make([]decimal.Decimal, len(points))
	for i, p := range points {
		labels[i] = PeriodLabel(p.Period)
		revenue[i] = p.Revenue.Round(moneyPlaces)
		count[i] = decimal.NewFromInt(int64(p.TransactionCount))
	}
	return ChartData{
		Type:   "line",
		Labels: labels,
		Data: []ChartSeries{
			{Name: "revenue", Values: revenue},
			{Name: "transactions", Values: count},
		},
	}
}

func growthChart(points []models.CustomerGrowthPoint) ChartData {
	labels := make([]string, len(points))
	added := make([]decimal.Decimal, len(points))
	total := make([]decimal.Decimal, len(points))
	for i, p := range points {
		labels[i] = PeriodLabel(p.Period)
		added[i] = decimal.NewFromInt(int64(p.NewCustomers))
		total[i] = decimal.NewFromInt(int64(p.CumulativeCustomers))
	}
	return ChartData{
		Type:   "bar",
		Labels: labels,
		Data: []ChartSeries{
			{Name: "new_customers", Values: added},
			{Name: "total_customers", Values: total},
		},
	}
}

func segmentPie(summaries []models.SegmentSummary) PieChartData {
	pie := PieChartData{
		Type:   "pie",
		Labels: make([]string, len(summaries)),
		Values: make([]int, len(summaries)),
		Colors: make([]string, len(summaries)),
	}
	for i, s := range summaries {
		pie.Labels[i] = s.Segment.String()
		pie.Values[i] = s.CustomerCount
		pie.Colors[i] = s.Segment.Color()
	}
	return pie
}

// BuildSegmentDetail assembles the page of seg from the scored customers.
func BuildSegmentDetail(customers []models.CustomerSegment, seg segment.Segment) SegmentDetail {
	info := segment.Describe(seg)
	members := aggregate.Members(customers, seg)
	return SegmentDetail{
		SegmentName: seg.String(),
		Description: info.Description,
		Color:       info.Color,
		Stats:       roundStats(aggregate.StatsFor(customers, seg)),
		Customers:   lo.Map(members, func(c models.CustomerSegment, _ int) CustomerRow { return customerRow(c) }),
		Strategies:  info.Strategies,
	}
}

func roundStats(s aggregate.SegmentStats) aggregate.SegmentStats {
	s.AvgSpend = s.AvgSpend.Round(moneyPlaces)
	s.AvgFrequency = s.AvgFrequency.Round(percentPlaces)
	s.TotalRevenue = s.TotalRevenue.Round(moneyPlaces)
	return s
}

func customerRow(c models.CustomerSegment) CustomerRow {
	return CustomerRow{
		CustomerID:          c.CustomerID,
		CustomerName:        c.CustomerName,
		TotalTransactions:   c.TotalTransactions,
		TotalSpend:          c.TotalSpend.Round(moneyPlaces),
		AvgSpend:            c.AvgSpend.Round(moneyPlaces),
		LastTransactionDate: c.LastTransactionDate.Format("2006-01-02"),
		RecencyScore:        c.Score.Recency,
		FrequencyScore:      c.Score.Frequency,
		MonetaryScore:       c.Score.Monetary,
	}
}

// PeriodLabel turns "2024-03" into "Mar 2024". Unparseable keys are returned as is.
func PeriodLabel(period string) string {
	t, err := parsePeriod(period)
	if err != nil {
		return period
	}
	return t.Format("Jan 2006")
}

func parsePeriod(period string) (time.Time, error) {
	return time.Parse("2006-01", period)
}

// FormatCurrency renders an amount as rupiah without decimals, e.g. "Rp 1.250.000".
func FormatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "Rp " + groupThousands(d.Round(0).String())
}

// FormatCount renders an integer with thousand separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + groupThousands(strconv.FormatInt(-n, 10))
	}
	return groupThousands(strconv.FormatInt(n, 10))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
