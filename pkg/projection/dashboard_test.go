package projection

import (
	"testing"
	"time"

	"rfm-segments/pkg/aggregate"
	"rfm-segments/pkg/models"
	"rfm-segments/pkg/segment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "Mar 2024", PeriodLabel("2024-03"))
	assert.Equal(t, "garbage", PeriodLabel("garbage"))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "Rp 0", FormatCurrency(decimal.Zero))
	assert.Equal(t, "Rp 999", FormatCurrency(decimal.NewFromInt(999)))
	assert.Equal(t, "Rp 1.250.000", FormatCurrency(decimal.NewFromInt(1250000)))
	assert.Equal(t, "Rp 847.500.001", FormatCurrency(decimal.RequireFromString("847500000.6")))
	assert.Equal(t, "-Rp 1.000", FormatCurrency(decimal.NewFromInt(-1000)))
	assert.Equal(t, "12.345", FormatCount(12345))
}

func TestBuildDashboard(t *testing.T) {
	overview := aggregate.Overview{
		TotalCustomers:    3,
		TotalTransactions: 4,
		TotalRevenue:      decimal.NewFromInt(900),
		AvgSpend:          decimal.NewFromInt(300),
	}
	summaries := []models.SegmentSummary{
		{Segment: segment.Champions, CustomerCount: 1, Percentage: decimal.RequireFromString("33.3333333333333333"), AvgSpend: decimal.NewFromInt(600), TotalRevenue: decimal.NewFromInt(600)},
		{Segment: segment.Lost, CustomerCount: 2, Percentage: decimal.RequireFromString("66.6666666666666667"), AvgSpend: decimal.NewFromInt(150), TotalRevenue: decimal.NewFromInt(300)},
	}
	revenue := []models.MonthlyRevenuePoint{
		{Period: "2024-01", Revenue: decimal.NewFromInt(400), TransactionCount: 2},
		{Period: "2024-02", Revenue: decimal.Zero, TransactionCount: 0},
	}
	growth := []models.CustomerGrowthPoint{
		{Period: "2024-01", NewCustomers: 2, CumulativeCustomers: 2},
		{Period: "2024-02", NewCustomers: 0, CumulativeCustomers: 2},
	}

	d := BuildDashboard(overview, summaries, revenue, growth)

	require.Len(t, d.Metrics, 4)
	assert.Equal(t, "Rp 900", d.Metrics[3].Value)

	require.Len(t, d.Segments, 2)
	assert.Equal(t, "Champions", d.Segments[0].SegmentName)
	assert.Equal(t, "33.3", d.Segments[0].Percentage.String())
	assert.Equal(t, "66.7", d.Segments[1].Percentage.String())

	assert.Equal(t, []string{"Jan 2024", "Feb 2024"}, d.Revenue.Labels)
	require.Len(t, d.Revenue.Data, 2)
	assert.True(t, d.Revenue.Data[0].Values[1].IsZero())
	assert.Equal(t, "2", d.Revenue.Data[1].Values[0].String())
	assert.Equal(t, "2", d.Growth.Data[1].Values[1].String())

	assert.Equal(t, []string{"Champions", "Lost"}, d.SegmentPie.Labels)
	assert.Equal(t, []int{1, 2}, d.SegmentPie.Values)
	assert.Equal(t, []string{"hsl(0, 0%, 0%)", "hsl(0, 0%, 60%)"}, d.SegmentPie.Colors)
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := BuildDashboard(aggregate.Overview{}, nil, nil, nil)
	assert.Empty(t, d.Segments)
	assert.Empty(t, d.Revenue.Labels)
	assert.Empty(t, d.SegmentPie.Values)
}

func TestBuildSegmentDetail(t *testing.T) {
	last := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	customers := []models.CustomerSegment{
		{
			CustomerAggregate: models.CustomerAggregate{CustomerID: "CUST-002", TotalTransactions: 2, TotalSpend: decimal.NewFromInt(80000), AvgSpend: decimal.NewFromInt(40000), LastTransactionDate: last},
			Score:             models.RFMScore{Recency: 5, Frequency: 1, Monetary: 2},
			Segment:           segment.RecentCustomers,
		},
		{
			CustomerAggregate: models.CustomerAggregate{CustomerID: "CUST-001", CustomerName: "Rina", TotalTransactions: 3, TotalSpend: decimal.NewFromInt(120000), AvgSpend: decimal.NewFromInt(40000), LastTransactionDate: last},
			Score:             models.RFMScore{Recency: 5, Frequency: 2, Monetary: 2},
			Segment:           segment.RecentCustomers,
		},
		{
			CustomerAggregate: models.CustomerAggregate{CustomerID: "CUST-003", TotalTransactions: 40, TotalSpend: decimal.NewFromInt(2000000)},
			Segment:           segment.Champions,
		},
	}

	d := BuildSegmentDetail(customers, segment.RecentCustomers)
	assert.Equal(t, "Recent Customers", d.SegmentName)
	assert.Equal(t, 2, d.Stats.TotalCustomers)
	assert.Equal(t, "100000", d.Stats.AvgSpend.String())
	assert.Equal(t, "2.5", d.Stats.AvgFrequency.String())
	require.Len(t, d.Customers, 2)
	assert.Equal(t, "CUST-001", d.Customers[0].CustomerID)
	assert.Equal(t, "2024-11-15", d.Customers[0].LastTransactionDate)
	assert.Len(t, d.Strategies, 3)
}
