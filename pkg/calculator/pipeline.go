package calculator

import (
	"context"
	"time"

	"rfm-segments/pkg/aggregate"
	"rfm-segments/pkg/models"
	"rfm-segments/pkg/scoring"
	"rfm-segments/pkg/segment"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Report bundles every output of one computation over one transaction snapshot.
type Report struct {
	RunID     string                       `json:"run_id"`
	AccountID string                       `json:"account_id,omitempty"`
	BatchID   string                       `json:"batch_id,omitempty"`
	AsOf      time.Time                    `json:"as_of"`
	Overview  aggregate.Overview           `json:"overview"`
	Customers []models.CustomerSegment     `json:"customers"`
	Segments  []models.SegmentSummary      `json:"segments"`
	Revenue   []models.MonthlyRevenuePoint `json:"revenue"`
	Growth    []models.CustomerGrowthPoint `json:"growth"`
	Rejected  []models.RejectedTransaction `json:"rejected,omitempty"`
}

// ComputeCustomerSegments scores and classifies every customer of txns.
// Invalid rows are returned separately and do not block the others.
func ComputeCustomerSegments(txns []models.Transaction, asOf time.Time) ([]models.CustomerSegment, []models.RejectedTransaction, error) {
	res, err := scoring.Score(txns, asOf)
	if err != nil {
		return nil, nil, err
	}
	for i := range res.Customers {
		c := &res.Customers[i]
		seg, err := segment.Classify(c.Score)
		if err != nil {
			var scoreErr *segment.InvalidScoreError
			if errors.As(err, &scoreErr) {
				scoreErr.CustomerID = c.CustomerID
			}
			return nil, nil, errors.Wrapf(err, "classify %s", c.CustomerID)
		}
		c.Segment = seg
	}
	return res.Customers, res.Rejected, nil
}

// Run computes segments, series and summaries over one snapshot of txns.
// Cancellation is checked before each stage.
func Run(ctx context.Context, txns []models.Transaction, cfg models.Config) (Report, error) {
	if cfg.AsOf.IsZero() {
		return Report{}, errors.New("as-of date is required")
	}
	report := Report{
		RunID:     uuid.NewString(),
		AccountID: cfg.AccountID,
		BatchID:   cfg.BatchID,
		AsOf:      models.Day(cfg.AsOf),
	}
	logger := log.With().
		Str("run_id", report.RunID).
		Str("account", cfg.AccountID).
		Str("batch", cfg.BatchID).
		Logger()

	snapshot := make([]models.Transaction, len(txns))
	copy(snapshot, txns)

	if err := checkpoint(ctx, "validate"); err != nil {
		return Report{}, err
	}
	accepted, rejected := models.Partition(snapshot, report.AsOf)
	report.Rejected = rejected
	if len(rejected) > 0 {
		logger.Warn().Int("rejected", len(rejected)).Int("accepted", len(accepted)).Msg("invalid transactions excluded")
	}

	if err := checkpoint(ctx, "segments"); err != nil {
		return Report{}, err
	}
	customers, _, err := ComputeCustomerSegments(accepted, report.AsOf)
	if err != nil {
		return Report{}, err
	}
	report.Customers = customers

	if err := checkpoint(ctx, "revenue"); err != nil {
		return Report{}, err
	}
	report.Overview = aggregate.Summarize(accepted)
	report.Revenue = aggregate.RevenueSeries(accepted, cfg.Window)

	if err := checkpoint(ctx, "growth"); err != nil {
		return Report{}, err
	}
	report.Growth = aggregate.GrowthSeries(accepted, cfg.Window)

	if err := checkpoint(ctx, "summaries"); err != nil {
		return Report{}, err
	}
	report.Segments = aggregate.SegmentSummaries(customers)

	if cfg.Verbose {
		for _, s := range report.Segments {
			logger.Debug().
				Str("segment", s.Segment.String()).
				Int("customers", s.CustomerCount).
				Str("revenue", s.TotalRevenue.String()).
				Msg("segment summary")
		}
	}
	logger.Info().
		Int("transactions", len(accepted)).
		Int("customers", len(customers)).
		Int("months", len(report.Revenue)).
		Msg("computation done")
	return report, nil
}

func checkpoint(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "before stage %s", stage)
	}
	return nil
}

// ParseDate parses an as-of date "YYYY-MM-DD" into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "expected YYYY-MM-DD (e.g. 2024-06-15)")
	}
	return t, nil
}
