// Package aggregate derives per-customer rollups, monthly series and segment
// summaries from one transaction set. Every function is pure.
package aggregate

import (
	"sort"

	"rfm-segments/pkg/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Customers rolls txns up per customer_id, ordered by customer_id.
// Rows are expected to have passed models.Partition.
func Customers(txns []models.Transaction) []models.CustomerAggregate {
	byCustomer := lo.GroupBy(txns, func(t models.Transaction) string { return t.CustomerID })

	out := make([]models.CustomerAggregate, 0, len(byCustomer))
	for id, rows := range byCustomer {
		agg := models.CustomerAggregate{
			CustomerID:           id,
			TotalTransactions:    len(rows),
			TotalSpend:           decimal.Zero,
			FirstTransactionDate: rows[0].Date,
			LastTransactionDate:  rows[0].Date,
		}
		for _, t := range rows {
			agg.TotalSpend = agg.TotalSpend.Add(t.Amount)
			if agg.CustomerName == "" {
				agg.CustomerName = t.CustomerName
			}
			if t.Date.Before(agg.FirstTransactionDate) {
				agg.FirstTransactionDate = t.Date
			}
			if t.Date.After(agg.LastTransactionDate) {
				agg.LastTransactionDate = t.Date
			}
		}
		agg.AvgSpend = agg.TotalSpend.Div(decimal.NewFromInt(int64(agg.TotalTransactions)))
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}

// Overview holds the dashboard metric cards.
type Overview struct {
	TotalCustomers    int             `json:"total_customers"`
	TotalTransactions int             `json:"total_transactions"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AvgSpend          decimal.Decimal `json:"avg_spend"` // revenue per distinct customer
}

// Summarize computes the dashboard totals of txns.
func Summarize(txns []models.Transaction) Overview {
	o := Overview{
		TotalTransactions: len(txns),
		TotalRevenue:      sumAmounts(txns),
		AvgSpend:          decimal.Zero,
	}
	o.TotalCustomers = len(lo.UniqBy(txns, func(t models.Transaction) string { return t.CustomerID }))
	if o.TotalCustomers > 0 {
		o.AvgSpend = o.TotalRevenue.Div(decimal.NewFromInt(int64(o.TotalCustomers)))
	}
	return o
}

func sumAmounts(txns []models.Transaction) decimal.Decimal {
	return lo.Reduce(txns, func(acc decimal.Decimal, t models.Transaction, _ int) decimal.Decimal {
		return acc.Add(t.Amount)
	}, decimal.Zero)
}
