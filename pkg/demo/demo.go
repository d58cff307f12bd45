// Package demo holds a fixed sample transaction set for trying the tool
// without a database or an upload.
package demo

import (
	"time"

	"rfm-segments/pkg/models"

	"github.com/shopspring/decimal"
)

// AccountID owns the demo transactions.
const AccountID = "demo"

// AsOf returns the reference date the demo set was built for.
func AsOf() time.Time {
	return time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)
}

type row struct {
	id, name, date, amount string
}

var rows = []row{
	{"CUST-001", "Budi Santoso", "2024-06-03", "520000"},
	{"CUST-001", "Budi Santoso", "2024-07-14", "610000"},
	{"CUST-001", "Budi Santoso", "2024-08-20", "480000"},
	{"CUST-001", "Budi Santoso", "2024-10-02", "550000"},
	{"CUST-001", "Budi Santoso", "2024-11-25", "700000"},
	{"CUST-002", "Siti Rahma", "2024-06-11", "310000"},
	{"CUST-002", "Siti Rahma", "2024-08-09", "295000"},
	{"CUST-002", "Siti Rahma", "2024-09-30", "330000"},
	{"CUST-002", "Siti Rahma", "2024-11-18", "305000"},
	{"CUST-003", "Andi Wijaya", "2024-06-20", "180000"},
	{"CUST-003", "Andi Wijaya", "2024-07-05", "175000"},
	{"CUST-003", "Andi Wijaya", "2024-07-28", "190000"},
	{"CUST-004", "Dewi Lestari", "2024-11-20", "150000"},
	{"CUST-005", "Rudi Hartono", "2024-06-08", "110000"},
	{"CUST-006", "Maya Putri", "2024-07-19", "260000"},
	{"CUST-006", "Maya Putri", "2024-09-12", "240000"},
	{"CUST-006", "Maya Putri", "2024-10-27", "275000"},
	{"CUST-007", "Agus Salim", "2024-08-15", "1250000"},
	{"CUST-008", "Rina Marlina", "2024-09-03", "95000"},
	{"CUST-008", "Rina Marlina", "2024-11-02", "87500"},
	{"CUST-009", "Joko Susilo", "2024-10-10", "145000"},
	{"CUST-010", "Lina Kusuma", "2024-11-28", "60000"},
	{"CUST-011", "Hendra Gunawan", "2024-06-25", "430000"},
	{"CUST-011", "Hendra Gunawan", "2024-07-30", "415000"},
	{"CUST-011", "Hendra Gunawan", "2024-08-28", "460000"},
	{"CUST-012", "Fitri Handayani", "2024-10-21", "205000"},
	{"CUST-012", "Fitri Handayani", "2024-11-10", "198000"},
}

// Transactions returns a fresh copy of the demo set on every call.
func Transactions() []models.Transaction {
	out := make([]models.Transaction, len(rows))
	for i, r := range rows {
		d, err := time.Parse("2006-01-02", r.date)
		if err != nil {
			panic(err)
		}
		out[i] = models.Transaction{
			CustomerID:   r.id,
			CustomerName: r.name,
			Date:         d,
			Amount:       decimal.RequireFromString(r.amount),
		}
	}
	return out
}
