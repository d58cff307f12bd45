// Package projection formats computed results into the shapes read by the
// dashboard and segment pages. It holds no business rules.
package projection

import (
	"rfm-segments/pkg/aggregate"
	"rfm-segments/pkg/segment"

	"github.com/shopspring/decimal"
)

// ChartData is a line or bar chart: one label per point, one or more series.
type ChartData struct {
	Type   string        `json:"type"`
	Labels []string      `json:"labels"`
	Data   []ChartSeries `json:"data"`
}

// ChartSeries is one named series of a chart.
type ChartSeries struct {
	Name   string            `json:"name"`
	Values []decimal.Decimal `json:"values"`
}

// PieChartData is a pie chart with one color per slice.
type PieChartData struct {
	Type   string   `json:"type"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Colors []string `json:"colors"`
}

// StatCard is a headline number of the dashboard.
type StatCard struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SegmentRow is a segment summary rounded for display.
type SegmentRow struct {
	SegmentName   string          `json:"segment_name"`
	CustomerCount int             `json:"customer_count"`
	Percentage    decimal.Decimal `json:"percentage"`
	AvgSpend      decimal.Decimal `json:"avg_spend"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	Color         string          `json:"color"`
}

// Dashboard is the payload of the dashboard page.
type Dashboard struct {
	Metrics    []StatCard         `json:"metrics"`
	Overview   aggregate.Overview `json:"overview"`
	Segments   []SegmentRow       `json:"segments"`
	Revenue    ChartData          `json:"revenue"`
	Growth     ChartData          `json:"growth"`
	SegmentPie PieChartData       `json:"segment_pie"`
}

// CustomerRow is one member line of a segment page.
type CustomerRow struct {
	CustomerID          string          `json:"customer_id"`
	CustomerName        string          `json:"customer_name,omitempty"`
	TotalTransactions   int             `json:"total_transactions"`
	TotalSpend          decimal.Decimal `json:"total_spend"`
	AvgSpend            decimal.Decimal `json:"avg_spend"`
	LastTransactionDate string          `json:"last_transaction_date"`
	RecencyScore        int             `json:"recency_score"`
	FrequencyScore      int             `json:"frequency_score"`
	MonetaryScore       int             `json:"monetary_score"`
}

// SegmentDetail is the payload of a segment page.
type SegmentDetail struct {
	SegmentName string                 `json:"segment_name"`
	Description string                 `json:"description"`
	Color       string                 `json:"color"`
	Stats       aggregate.SegmentStats `json:"stats"`
	Customers   []CustomerRow          `json:"customers"`
	Strategies  []segment.Strategy     `json:"strategies"`
}
