package export

import (
	"io"

	"rfm-segments/pkg/calculator"
	"rfm-segments/pkg/projection"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the report workbook.
const (
	SheetSegments  = "Segments"
	SheetCustomers = "Customers"
	SheetRevenue   = "Revenue"
	SheetGrowth    = "Growth"
	SheetRejected  = "Rejected"
)

const headerColor = "4472C4"

// WriteReportXLSX writes r as a workbook with one sheet per result. The
// Rejected sheet is only added when rows were excluded.
func WriteReportXLSX(w io.Writer, r calculator.Report) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("close workbook")
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}

	if err := f.SetSheetName("Sheet1", SheetSegments); err != nil {
		return errors.Wrap(err, "rename first sheet")
	}

	segments := [][]any{{"Segment", "Customers", "Percentage", "Avg Spend", "Total Revenue"}}
	for _, s := range r.Segments {
		segments = append(segments, []any{
			s.Segment.String(),
			s.CustomerCount,
			s.Percentage.Round(1).InexactFloat64(),
			s.AvgSpend.Round(2).InexactFloat64(),
			s.TotalRevenue.Round(2).InexactFloat64(),
		})
	}

	customers := [][]any{{"Customer ID", "Name", "Transactions", "Total Spend", "Avg Spend",
		"Last Transaction", "Recency Days", "R", "F", "M", "Segment"}}
	for _, c := range r.Customers {
		customers = append(customers, []any{
			c.CustomerID,
			c.CustomerName,
			c.TotalTransactions,
			c.TotalSpend.Round(2).InexactFloat64(),
			c.AvgSpend.Round(2).InexactFloat64(),
			c.LastTransactionDate.Format("2006-01-02"),
			c.RecencyDays,
			c.Score.Recency,
			c.Score.Frequency,
			c.Score.Monetary,
			c.Segment.String(),
		})
	}

	revenue := [][]any{{"Period", "Month", "Revenue", "Transactions"}}
	for _, p := range r.Revenue {
		revenue = append(revenue, []any{p.Period, projection.PeriodLabel(p.Period), p.Revenue.Round(2).InexactFloat64(), p.TransactionCount})
	}

	growth := [][]any{{"Period", "Month", "New Customers", "Total Customers"}}
	for _, p := range r.Growth {
		growth = append(growth, []any{p.Period, projection.PeriodLabel(p.Period), p.NewCustomers, p.CumulativeCustomers})
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSegments, segments},
		{SheetCustomers, customers},
		{SheetRevenue, revenue},
		{SheetGrowth, growth},
	}
	if len(r.Rejected) > 0 {
		rejected := [][]any{{"Index", "Line", "Customer ID", "Date", "Amount", "Reason"}}
		for _, rej := range r.Rejected {
			var line, date any = "", ""
			if rej.Line > 0 {
				line = rej.Line
			}
			if !rej.Transaction.Date.IsZero() {
				date = rej.Transaction.Date.Format("2006-01-02")
			}
			rejected = append(rejected, []any{rej.Index, line, rej.Transaction.CustomerID, date, rej.Transaction.Amount.String(), rej.Reason})
		}
		sheets = append(sheets, struct {
			name string
			rows [][]any
		}{SheetRejected, rejected})
	}

	for i, sh := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(sh.name); err != nil {
				return errors.Wrapf(err, "create sheet %s", sh.name)
			}
		}
		if err := writeRows(f, sh.name, sh.rows, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write %s row %d", sheet, i+1)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return errors.Wrap(err, "column name")
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return errors.Wrapf(err, "style %s header", sheet)
	}
	return errors.Wrapf(f.SetColWidth(sheet, "A", last, 18), "size %s columns", sheet)
}
