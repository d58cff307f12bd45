// Package ingest reads uploaded transaction files into typed rows. Amounts and
// dates are parsed here, once; rows that do not parse are rejected with the
// line they came from.
package ingest

import (
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"rfm-segments/pkg/models"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Header is the column layout of the upload template.
const Header = "customer_id,transaction_date,transaction_amount,customer_name"

var dateLayouts = []string{"2006-01-02", "2006/01/02", time.RFC3339}

type csvRow struct {
	CustomerID   string `csv:"customer_id" validate:"required,max=128"`
	Date         string `csv:"transaction_date" validate:"required"`
	Amount       string `csv:"transaction_amount" validate:"required"`
	CustomerName string `csv:"customer_name" validate:"max=255"`
}

// Batch is the parsed content of one uploaded file. Lines[i] is the file
// line of Transactions[i]; Rejected indexes are data row positions in the file.
type Batch struct {
	Transactions []models.Transaction
	Lines        []int
	Rejected     []models.RejectedTransaction
}

// Rejections merges the rows rejected while parsing with core, the rows
// excluded later by the computation (Index pointing into b.Transactions).
// The result is indexed by file position and ordered by line.
func (b Batch) Rejections(core []models.RejectedTransaction) []models.RejectedTransaction {
	out := make([]models.RejectedTransaction, 0, len(b.Rejected)+len(core))
	out = append(out, b.Rejected...)
	for _, r := range core {
		if r.Index >= 0 && r.Index < len(b.Lines) {
			r.Line = b.Lines[r.Index]
			r.Index = r.Line - 2
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// Reader parses transaction CSV files.
type Reader struct {
	validate *validator.Validate
}

// NewReader returns a Reader with its validator ready.
func NewReader() *Reader {
	v := validator.New()
	// report csv column names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("csv"), ",", 2)[0]
	})
	return &Reader{validate: v}
}

// Read parses r. A malformed file (bad header, broken quoting) is an error;
// invalid lines are collected in Batch.Rejected.
func (rd *Reader) Read(r io.Reader) (Batch, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return Batch{}, nil
		}
		return Batch{}, errors.Wrap(err, "read csv")
	}

	var b Batch
	for i, row := range rows {
		line := i + 2 // header is line 1
		t, err := rd.parse(row)
		if err != nil {
			b.Rejected = append(b.Rejected, models.RejectedTransaction{
				Index:       i,
				Line:        line,
				Transaction: models.Transaction{CustomerID: row.CustomerID, CustomerName: row.CustomerName},
				Reason:      err.Error(),
			})
			continue
		}
		b.Transactions = append(b.Transactions, t)
		b.Lines = append(b.Lines, line)
	}
	return b, nil
}

func (rd *Reader) parse(row *csvRow) (models.Transaction, error) {
	row.CustomerID = strings.TrimSpace(row.CustomerID)
	row.Date = strings.TrimSpace(row.Date)
	row.Amount = strings.TrimSpace(row.Amount)
	row.CustomerName = strings.TrimSpace(row.CustomerName)

	if err := rd.validate.Struct(row); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return models.Transaction{}, errors.Newf("%s failed %q", fe.Field(), fe.Tag())
		}
		return models.Transaction{}, err
	}

	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return models.Transaction{}, errors.Newf("transaction_amount %q is not a decimal", row.Amount)
	}
	if amount.IsNegative() {
		return models.Transaction{}, errors.Newf("transaction_amount %s is negative", row.Amount)
	}
	date, err := parseDate(row.Date)
	if err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{
		CustomerID:   row.CustomerID,
		CustomerName: row.CustomerName,
		Date:         models.Day(date),
		Amount:       amount,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("transaction_date %q is not YYYY-MM-DD", s)
}
