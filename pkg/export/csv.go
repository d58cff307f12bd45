// Package export writes computed reports to files: a flat CSV of customer
// segments and a multi-sheet XLSX workbook.
package export

import (
	"io"

	"rfm-segments/pkg/models"

	"github.com/cockroachdb/errors"
	"github.com/gocarina/gocsv"
)

// segmentRecord is one line of the customer segments CSV.
type segmentRecord struct {
	CustomerID          string `csv:"customer_id"`
	CustomerName        string `csv:"customer_name"`
	TotalTransactions   int    `csv:"total_transactions"`
	TotalSpend          string `csv:"total_spend"`
	AvgSpend            string `csv:"avg_spend"`
	LastTransactionDate string `csv:"last_transaction_date"`
	RecencyDays         int    `csv:"recency_days"`
	RecencyScore        int    `csv:"recency_score"`
	FrequencyScore      int    `csv:"frequency_score"`
	MonetaryScore       int    `csv:"monetary_score"`
	SegmentName         string `csv:"segment_name"`
}

// WriteSegmentsCSV writes one line per customer, header included even when
// customers is empty.
func WriteSegmentsCSV(w io.Writer, customers []models.CustomerSegment) error {
	records := make([]*segmentRecord, 0, len(customers))
	for _, c := range customers {
		records = append(records, &segmentRecord{
			CustomerID:          c.CustomerID,
			CustomerName:        c.CustomerName,
			TotalTransactions:   c.TotalTransactions,
			TotalSpend:          c.TotalSpend.StringFixed(2),
			AvgSpend:            c.AvgSpend.StringFixed(2),
			LastTransactionDate: c.LastTransactionDate.Format("2006-01-02"),
			RecencyDays:         c.RecencyDays,
			RecencyScore:        c.Score.Recency,
			FrequencyScore:      c.Score.Frequency,
			MonetaryScore:       c.Score.Monetary,
			SegmentName:         c.Segment.String(),
		})
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return errors.Wrap(err, "marshal segments csv")
	}
	return nil
}
