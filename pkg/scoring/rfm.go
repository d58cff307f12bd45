// Package scoring computes recency, frequency and monetary scores of every
// customer relative to the population of one transaction set.
package scoring

import (
	"sort"
	"time"

	"rfm-segments/pkg/aggregate"
	"rfm-segments/pkg/models"
	"rfm-segments/pkg/segment"

	"github.com/cockroachdb/errors"
)

const buckets = 5

// Result is the outcome of one scoring run. Customers are ordered by
// customer_id and carry no segment yet.
type Result struct {
	Customers []models.CustomerSegment
	Rejected  []models.RejectedTransaction
}

// Score validates txns against asOf, drops the invalid rows into
// Result.Rejected and scores every remaining customer.
func Score(txns []models.Transaction, asOf time.Time) (Result, error) {
	if asOf.IsZero() {
		return Result{}, errors.New("scoring: as-of date is required")
	}
	asOf = models.Day(asOf)

	accepted, rejected := models.Partition(txns, asOf)
	customers := ScoreCustomers(aggregate.Customers(accepted), asOf)
	for _, c := range customers {
		if err := c.Score.Validate(); err != nil {
			var scoreErr *segment.InvalidScoreError
			if errors.As(err, &scoreErr) {
				scoreErr.CustomerID = c.CustomerID
			}
			return Result{}, errors.Wrap(err, "scoring")
		}
	}
	return Result{Customers: customers, Rejected: rejected}, nil
}

// ScoreCustomers assigns quintile scores to already aggregated customers.
// The best ranked customer of each dimension always gets 5.
func ScoreCustomers(aggs []models.CustomerAggregate, asOf time.Time) []models.CustomerSegment {
	out := make([]models.CustomerSegment, len(aggs))
	for i, a := range aggs {
		out[i] = models.CustomerSegment{
			CustomerAggregate: a,
			RecencyDays:       daysBetween(a.LastTransactionDate, asOf),
		}
	}

	recency := quintiles(out, func(a, b models.CustomerSegment) bool { return a.RecencyDays < b.RecencyDays })
	frequency := quintiles(out, func(a, b models.CustomerSegment) bool { return a.TotalTransactions > b.TotalTransactions })
	monetary := quintiles(out, func(a, b models.CustomerSegment) bool { return a.TotalSpend.GreaterThan(b.TotalSpend) })
	for i := range out {
		out[i].Score = models.RFMScore{
			Recency:   recency[i],
			Frequency: frequency[i],
			Monetary:  monetary[i],
		}
	}
	return out
}

// quintiles ranks customers best first with better, breaking ties by
// customer_id, and maps rank r of n to 5 - floor(5r/n).
func quintiles(customers []models.CustomerSegment, better func(a, b models.CustomerSegment) bool) []int {
	n := len(customers)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := customers[order[i]], customers[order[j]]
		if better(a, b) {
			return true
		}
		if better(b, a) {
			return false
		}
		return a.CustomerID < b.CustomerID
	})

	scores := make([]int, n)
	for rank, idx := range order {
		scores[idx] = buckets - (buckets*rank)/n
	}
	return scores
}

func daysBetween(from, to time.Time) int {
	return int(models.Day(to).Sub(models.Day(from)).Hours() / 24)
}
