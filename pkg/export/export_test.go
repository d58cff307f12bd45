package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"rfm-segments/pkg/calculator"
	"rfm-segments/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func tx(id, day, amount string) models.Transaction {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return models.Transaction{CustomerID: id, CustomerName: "Name " + id, Date: d, Amount: decimal.RequireFromString(amount)}
}

func report(t *testing.T, txns []models.Transaction) calculator.Report {
	t.Helper()
	r, err := calculator.Run(context.Background(), txns, models.Config{
		AccountID: "acc-1",
		AsOf:      time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return r
}

func sample() []models.Transaction {
	return []models.Transaction{
		tx("C1", "2024-01-10", "100000"),
		tx("C1", "2024-02-10", "100000"),
		tx("C2", "2024-06-01", "500000"),
		tx("C3", "2024-03-03", "75000.50"),
	}
}

func TestWriteSegmentsCSV(t *testing.T) {
	r := report(t, sample())

	var buf bytes.Buffer
	require.NoError(t, WriteSegmentsCSV(&buf, r.Customers))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "customer_id,customer_name,total_transactions,total_spend,avg_spend,last_transaction_date,"+
		"recency_days,recency_score,frequency_score,monetary_score,segment_name", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "C1,Name C1,2,200000.00,100000.00,2024-02-10,126,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "C3,Name C3,1,75000.50,75000.50,2024-03-03,"), lines[3])
}

func TestWriteSegmentsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSegmentsCSV(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "customer_id,"))
}

func TestWriteReportXLSX(t *testing.T) {
	r := report(t, sample())

	var buf bytes.Buffer
	require.NoError(t, WriteReportXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSegments, SheetCustomers, SheetRevenue, SheetGrowth}, f.GetSheetList())

	customers, err := f.GetRows(SheetCustomers)
	require.NoError(t, err)
	require.Len(t, customers, 4)
	assert.Equal(t, "Customer ID", customers[0][0])
	assert.Equal(t, "C1", customers[1][0])
	assert.Equal(t, "2024-02-10", customers[1][5])

	revenue, err := f.GetRows(SheetRevenue)
	require.NoError(t, err)
	// 2024-01 .. 2024-06
	require.Len(t, revenue, 7)
	assert.Equal(t, "2024-04", revenue[4][0])
	assert.Equal(t, "Apr 2024", revenue[4][1])
	assert.Equal(t, "0", revenue[4][3])

	growth, err := f.GetRows(SheetGrowth)
	require.NoError(t, err)
	assert.Equal(t, "3", growth[len(growth)-1][3])

	segments, err := f.GetRows(SheetSegments)
	require.NoError(t, err)
	assert.Len(t, segments, len(r.Segments)+1)
}

func TestWriteReportXLSX_Rejected(t *testing.T) {
	r := report(t, append(sample(), tx("C9", "2024-03-01", "-5")))
	require.Len(t, r.Rejected, 1)

	var buf bytes.Buffer
	require.NoError(t, WriteReportXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetRejected)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "4", rows[1][0])
	assert.Equal(t, "", rows[1][1])
	assert.Equal(t, "C9", rows[1][2])
}

func TestWriteReportXLSX_RejectedLine(t *testing.T) {
	r := report(t, sample())
	r.Rejected = []models.RejectedTransaction{{Index: 3, Line: 5, Transaction: models.Transaction{CustomerID: "C7"}, Reason: "customer_id failed \"required\""}}

	var buf bytes.Buffer
	require.NoError(t, WriteReportXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetRejected)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"3", "5", "C7", "", "0", `customer_id failed "required"`}, rows[1])
}
