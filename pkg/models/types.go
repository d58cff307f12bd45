package models

import (
	"time"

	"rfm-segments/pkg/segment"

	"github.com/shopspring/decimal"
)

/*
LOAD → rows handed over by the transaction store (database or CSV ingest).
*/

// Transaction is one validated purchase row of an ingestion batch.
type Transaction struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty"`
	Date         time.Time       `json:"transaction_date"`
	Amount       decimal.Decimal `json:"transaction_amount"`
}

// RejectedTransaction is an input row excluded from a computation, with its position in the input.
type RejectedTransaction struct {
	Index       int         `json:"index"`
	Line        int         `json:"line,omitempty"` // file line, for rows read from an upload
	Transaction Transaction `json:"transaction"`
	Reason      string      `json:"reason"`
}

/*
COMPUTE → derived per-customer and time-bucketed results.
*/

// RFMScore holds the three 1..5 ordinal scores of a customer.
type RFMScore = segment.Score

// CustomerAggregate is the per-customer rollup of one transaction set.
type CustomerAggregate struct {
	CustomerID           string          `json:"customer_id"`
	CustomerName         string          `json:"customer_name,omitempty"`
	TotalTransactions    int             `json:"total_transactions"`
	TotalSpend           decimal.Decimal `json:"total_spend"`
	AvgSpend             decimal.Decimal `json:"avg_spend"`
	FirstTransactionDate time.Time       `json:"first_transaction_date"`
	LastTransactionDate  time.Time       `json:"last_transaction_date"`
}

// CustomerSegment is the scored and classified record of one customer.
type CustomerSegment struct {
	CustomerAggregate
	RecencyDays int             `json:"recency_days"`
	Score       RFMScore        `json:"rfm_score"`
	Segment     segment.Segment `json:"segment_name"`
}

// MonthlyRevenuePoint is one calendar month of the revenue series.
type MonthlyRevenuePoint struct {
	Period           string          `json:"period"` // "YYYY-MM"
	PeriodStart      time.Time       `json:"period_start"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int             `json:"transaction_count"`
}

// CustomerGrowthPoint is one calendar month of the customer growth series.
type CustomerGrowthPoint struct {
	Period              string    `json:"period"`
	PeriodStart         time.Time `json:"period_start"`
	NewCustomers        int       `json:"new_customers"`
	CumulativeCustomers int       `json:"cumulative_customers"`
}

// SegmentSummary holds the totals of one segment. Percentage is kept unrounded.
type SegmentSummary struct {
	Segment       segment.Segment `json:"segment_name"`
	CustomerCount int             `json:"customer_count"`
	Percentage    decimal.Decimal `json:"percentage"`
	AvgSpend      decimal.Decimal `json:"avg_spend"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

/*
CONFIG → parameters of one computation run.
*/

// Config holds the parameters passed to the calculator.
type Config struct {
	AccountID string    // owner of the transaction set, used for logging and persistence
	BatchID   string    // upload batch; empty means every batch of the account
	AsOf      time.Time // reference "today" for recency, date only
	Window    int       // trailing months kept in the series, 0 keeps all
	Verbose   bool      // log per-stage details
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's calendar month at UTC midnight.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// PeriodKey formats the month bucket key of t ("YYYY-MM").
func PeriodKey(t time.Time) string {
	return t.Format("2006-01")
}
