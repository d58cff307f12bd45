package calculator

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"rfm-segments/pkg/models"
	"rfm-segments/pkg/segment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Valid(t *testing.T) {
	got, err := ParseDate("2024-06-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := ParseDate("15/06/2024"); err == nil {
		t.Fatal("expected error for invalid layout, got nil")
	}
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Fatal("expected error for invalid month, got nil")
	}
}

func tx(id, day, amount string) models.Transaction {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return models.Transaction{CustomerID: id, Date: d, Amount: decimal.RequireFromString(amount)}
}

func sample() []models.Transaction {
	return []models.Transaction{
		tx("C1", "2024-01-10", "100000"),
		tx("C1", "2024-02-10", "100000"),
		tx("C2", "2024-06-01", "500000"),
		tx("C3", "2024-03-03", "75000.50"),
		tx("C4", "2023-11-20", "12000"),
		tx("C4", "2024-04-20", "18000"),
		tx("C5", "2024-05-30", "250000"),
		tx("C6", "2023-12-01", "5000"),
	}
}

func asOf() models.Config {
	return models.Config{AccountID: "acc-1", AsOf: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
}

func TestComputeCustomerSegments_EveryCustomerOnce(t *testing.T) {
	customers, rejected, err := ComputeCustomerSegments(sample(), asOf().AsOf)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, customers, 6)

	seen := map[string]bool{}
	for _, c := range customers {
		assert.False(t, seen[c.CustomerID], c.CustomerID)
		seen[c.CustomerID] = true
		assert.NoError(t, c.Score.Validate())
		assert.NotEqual(t, segment.Unknown, c.Segment, c.CustomerID)
	}
}

func TestComputeCustomerSegments_SingleCustomer(t *testing.T) {
	customers, _, err := ComputeCustomerSegments([]models.Transaction{tx("solo", "2024-06-01", "10")}, asOf().AsOf)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, models.RFMScore{Recency: 5, Frequency: 5, Monetary: 5}, customers[0].Score)
	assert.Equal(t, segment.Champions, customers[0].Segment)
}

func TestRun_Empty(t *testing.T) {
	report, err := Run(context.Background(), nil, asOf())
	require.NoError(t, err)
	assert.Empty(t, report.Customers)
	assert.Empty(t, report.Segments)
	assert.Empty(t, report.Revenue)
	assert.Empty(t, report.Growth)
	assert.Equal(t, 0, report.Overview.TotalCustomers)
}

func TestRun_Reconciliation(t *testing.T) {
	txns := sample()
	report, err := Run(context.Background(), txns, asOf())
	require.NoError(t, err)

	count := 0
	revenue := decimal.Zero
	for _, s := range report.Segments {
		count += s.CustomerCount
		revenue = revenue.Add(s.TotalRevenue)
	}
	raw := decimal.Zero
	for _, row := range txns {
		raw = raw.Add(row.Amount)
	}
	assert.Equal(t, 6, count)
	assert.True(t, revenue.Equal(raw), "%s != %s", revenue, raw)
	assert.True(t, report.Overview.TotalRevenue.Equal(raw))

	newTotal := 0
	for _, g := range report.Growth {
		newTotal += g.NewCustomers
	}
	assert.Equal(t, 6, newTotal)
	assert.Equal(t, 6, report.Growth[len(report.Growth)-1].CumulativeCustomers)
	// 2023-11 .. 2024-06 without gaps
	assert.Len(t, report.Revenue, 8)
}

func TestRun_ExcludesInvalidRows(t *testing.T) {
	txns := append(sample(), tx("C9", "2024-07-01", "999"), tx("C1", "2024-03-01", "-1"))
	report, err := Run(context.Background(), txns, asOf())
	require.NoError(t, err)
	require.Len(t, report.Rejected, 2)
	assert.Equal(t, 8, report.Rejected[0].Index)
	assert.Equal(t, 9, report.Rejected[1].Index)
	assert.Len(t, report.Customers, 6)
	assert.Equal(t, 8, report.Overview.TotalTransactions)
}

func TestRun_Idempotent(t *testing.T) {
	first, err := Run(context.Background(), sample(), asOf())
	require.NoError(t, err)
	second, err := Run(context.Background(), sample(), asOf())
	require.NoError(t, err)

	// run ids differ by construction
	first.RunID, second.RunID = "", ""
	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_Window(t *testing.T) {
	cfg := asOf()
	cfg.Window = 3
	report, err := Run(context.Background(), sample(), cfg)
	require.NoError(t, err)
	require.Len(t, report.Revenue, 3)
	assert.Equal(t, "2024-04", report.Revenue[0].Period)
	assert.Equal(t, "2024-06", report.Revenue[2].Period)
	require.Len(t, report.Growth, 3)
	assert.Equal(t, 6, report.Growth[2].CumulativeCustomers)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, sample(), asOf())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_RequiresAsOf(t *testing.T) {
	_, err := Run(context.Background(), sample(), models.Config{})
	assert.Error(t, err)
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	txns := sample()
	txns[0].Date = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
	_, err := Run(context.Background(), txns, asOf())
	require.NoError(t, err)
	assert.Equal(t, 15, txns[0].Date.Hour())
}

func TestRunAccounts(t *testing.T) {
	src := StaticSource{
		"b": sample()[:3],
		"a": sample(),
		"c": nil,
	}
	var mu sync.Mutex
	done := []string{}
	reports, err := RunAccounts(context.Background(), src, []string{"c", "b", "a"}, asOf(), BatchOptions{
		Workers: 2,
		OnDone: func(id string) {
			mu.Lock()
			defer mu.Unlock()
			done = append(done, id)
		},
	})
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "a", reports[0].AccountID)
	assert.Equal(t, "b", reports[1].AccountID)
	assert.Equal(t, "c", reports[2].AccountID)
	assert.Len(t, reports[0].Customers, 6)
	assert.Len(t, reports[1].Customers, 2)
	assert.Empty(t, reports[2].Customers)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, done)
}

func TestRunAccounts_UnknownAccount(t *testing.T) {
	_, err := RunAccounts(context.Background(), StaticSource{}, []string{"missing"}, asOf(), BatchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
