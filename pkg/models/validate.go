package models

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalidTransaction marks every InvalidTransactionError.
var ErrInvalidTransaction = errors.New("invalid transaction")

// InvalidTransactionError describes a row that violates the basic constraints
// of the core. Ingestion should have filtered it already.
type InvalidTransactionError struct {
	Index      int
	CustomerID string
	Reason     string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction #%d (customer=%q): %s", e.Index, e.CustomerID, e.Reason)
}

// Is lets errors.Is match ErrInvalidTransaction.
func (e *InvalidTransactionError) Is(target error) bool {
	return target == ErrInvalidTransaction
}

// CheckTransaction returns an *InvalidTransactionError when t cannot enter the core.
// A zero asOf disables the future-date check.
func CheckTransaction(i int, t Transaction, asOf time.Time) error {
	reason := ""
	switch {
	case t.CustomerID == "":
		reason = "empty customer_id"
	case t.Date.IsZero():
		reason = "missing transaction_date"
	case t.Amount.IsNegative():
		reason = fmt.Sprintf("negative amount %s", t.Amount.String())
	case !asOf.IsZero() && Day(t.Date).After(Day(asOf)):
		reason = fmt.Sprintf("date %s after as-of %s", t.Date.Format("2006-01-02"), asOf.Format("2006-01-02"))
	}
	if reason == "" {
		return nil
	}
	return &InvalidTransactionError{Index: i, CustomerID: t.CustomerID, Reason: reason}
}

// Partition splits txns into the rows accepted by CheckTransaction and the rejected ones.
// Accepted rows keep their input order and have their date truncated to the calendar day.
func Partition(txns []Transaction, asOf time.Time) ([]Transaction, []RejectedTransaction) {
	accepted := make([]Transaction, 0, len(txns))
	var rejected []RejectedTransaction
	for i, t := range txns {
		if err := CheckTransaction(i, t, asOf); err != nil {
			var invalid *InvalidTransactionError
			reason := err.Error()
			if errors.As(err, &invalid) {
				reason = invalid.Reason
			}
			rejected = append(rejected, RejectedTransaction{Index: i, Transaction: t, Reason: reason})
			continue
		}
		t.Date = Day(t.Date)
		accepted = append(accepted, t)
	}
	return accepted, rejected
}
