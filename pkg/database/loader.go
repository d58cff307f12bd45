package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"rfm-segments/pkg/models"

	"github.com/cockroachdb/errors"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	transactionsTable = "transactions"
	segmentsTable     = "customer_segments"
	historyTable      = "upload_history"
)

// ErrNotFound is returned when a delete matches no row at all.
var ErrNotFound = errors.New("not found")

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open DSN mariadb:// or mysql:// → MySQL driver format
func Open(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", errors.Wrap(err, "open mysql")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", errors.Wrap(err, "parse dsn")
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", errors.New("incomplete dsn (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// Store reads transaction snapshots and writes segment rows. Rows are owned by
// an account (user_id) and an upload batch (upload_id); each batch has one
// upload_history row.
type Store struct {
	db           *sql.DB
	transactions string
	segments     string
	history      string
}

// NewStore returns a Store over the default tables.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, transactions: transactionsTable, segments: segmentsTable, history: historyTable}
}

// WithTables overrides the table names, e.g. for staging copies.
func (s *Store) WithTables(transactions, segments, history string) (*Store, error) {
	for _, name := range []string{transactions, segments, history} {
		if !tableNameRe.MatchString(name) {
			return nil, errors.Newf("invalid table name %q", name)
		}
	}
	return &Store{db: s.db, transactions: transactions, segments: segments, history: history}, nil
}

// snapshotOptions gives scoring and aggregation the same view of the data.
func snapshotOptions() *sql.TxOptions {
	return &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}
}

// LoadTransactions reads one consistent snapshot of the account's transactions.
// An empty batchID loads every batch. Rows whose amount is not a decimal are
// skipped and logged.
func (s *Store) LoadTransactions(ctx context.Context, accountID, batchID string) ([]models.Transaction, error) {
	q := fmt.Sprintf(`
		SELECT customer_id, COALESCE(customer_name, ''), transaction_date, CAST(transaction_amount AS CHAR)
		FROM %s
		WHERE user_id = ?`, s.transactions)
	args := []any{accountID}
	if batchID != "" {
		q += ` AND upload_id = ?`
		args = append(args, batchID)
	}
	q += ` ORDER BY transaction_date, id`

	tx, err := s.db.BeginTx(ctx, snapshotOptions())
	if err != nil {
		return nil, errors.Wrap(err, "begin snapshot")
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "query transactions account=%s", accountID)
	}
	defer rows.Close()

	var (
		out     []models.Transaction
		skipped int
	)
	for rows.Next() {
		var (
			t      models.Transaction
			amount sql.NullString
		)
		if err := rows.Scan(&t.CustomerID, &t.CustomerName, &t.Date, &amount); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		d, err := decimal.NewFromString(amount.String)
		if !amount.Valid || err != nil {
			skipped++
			log.Debug().Str("account", accountID).Str("customer", t.CustomerID).Str("raw", amount.String).Msg("unparseable amount, row skipped")
			continue
		}
		t.Amount = d
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate transactions")
	}

	if skipped > 0 {
		log.Warn().Str("account", accountID).Str("batch", batchID).Int("skipped", skipped).Msg("rows with unparseable amounts skipped")
	}
	log.Debug().Str("account", accountID).Str("batch", batchID).Int("rows", len(out)).Int("skipped", skipped).Msg("transactions loaded")
	return out, nil
}

// ListAccounts returns every account owning at least one transaction.
func (s *Store) ListAccounts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT DISTINCT user_id FROM %s ORDER BY user_id`, s.transactions))
	if err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan account")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "iterate accounts")
}

// ReplaceCustomerSegments swaps the stored segment rows of (account, batch)
// for segs in a single transaction.
func (s *Store) ReplaceCustomerSegments(ctx context.Context, accountID, batchID string, segs []models.CustomerSegment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND upload_id <=> ?`, s.segments),
		accountID, nullable(batchID)); err != nil {
		return errors.Wrap(err, "delete segments")
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (user_id, upload_id, customer_id, customer_name, total_transactions, total_spend,
			avg_spend, last_transaction_date, recency_score, frequency_score, monetary_score, segment_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.segments))
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, c := range segs {
		if _, err := stmt.ExecContext(ctx,
			accountID, nullable(batchID), c.CustomerID, c.CustomerName, c.TotalTransactions,
			c.TotalSpend.String(), c.AvgSpend.StringFixed(2), c.LastTransactionDate.Format("2006-01-02"),
			c.Score.Recency, c.Score.Frequency, c.Score.Monetary, c.Segment.String(),
		); err != nil {
			return errors.Wrapf(err, "insert segment customer=%s", c.CustomerID)
		}
	}
	return errors.Wrap(tx.Commit(), "commit segments")
}

// Upload is one upload_history row.
type Upload struct {
	ID                string    `json:"id"`
	FileName          string    `json:"file_name"`
	UploadedAt        time.Time `json:"uploaded_at"`
	CustomersCount    int       `json:"customers_count"`
	TransactionsCount int       `json:"transactions_count"`
}

// ListBatches returns the upload history of accountID, newest first.
func (s *Store) ListBatches(ctx context.Context, accountID string) ([]Upload, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, COALESCE(file_name, ''), uploaded_at, customers_count, transactions_count
		FROM %s
		WHERE user_id = ?
		ORDER BY uploaded_at DESC, id`, s.history), accountID)
	if err != nil {
		return nil, errors.Wrapf(err, "list batches account=%s", accountID)
	}
	defer rows.Close()

	var out []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.FileName, &u.UploadedAt, &u.CustomersCount, &u.TransactionsCount); err != nil {
			return nil, errors.Wrap(err, "scan batch")
		}
		out = append(out, u)
	}
	return out, errors.Wrap(rows.Err(), "iterate batches")
}

// Deleted counts the rows removed per table.
type Deleted struct {
	Transactions int64 `json:"transactions"`
	Segments     int64 `json:"customer_segments"`
	Uploads      int64 `json:"uploads"`
}

// DeleteBatch removes one upload batch: its transactions, its segment rows and
// its history row, in a single transaction. A batch matching no row at all
// returns ErrNotFound.
func (s *Store) DeleteBatch(ctx context.Context, accountID, batchID string) (Deleted, error) {
	if batchID == "" {
		return Deleted{}, errors.New("batch id is required")
	}
	return s.deleteRows(ctx, accountID, batchID)
}

// DeleteAccountData removes every transaction, segment row and upload of accountID.
func (s *Store) DeleteAccountData(ctx context.Context, accountID string) (Deleted, error) {
	return s.deleteRows(ctx, accountID, "")
}

func (s *Store) deleteRows(ctx context.Context, accountID, batchID string) (Deleted, error) {
	if accountID == "" {
		return Deleted{}, errors.New("account id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Deleted{}, errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	var d Deleted
	steps := []struct {
		table    string
		batchCol string
		count    *int64
	}{
		{s.transactions, "upload_id", &d.Transactions},
		{s.segments, "upload_id", &d.Segments},
		{s.history, "id", &d.Uploads},
	}
	for _, st := range steps {
		q := fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, st.table)
		args := []any{accountID}
		if batchID != "" {
			q += fmt.Sprintf(` AND %s = ?`, st.batchCol)
			args = append(args, batchID)
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return Deleted{}, errors.Wrapf(err, "delete from %s", st.table)
		}
		if *st.count, err = res.RowsAffected(); err != nil {
			return Deleted{}, errors.Wrapf(err, "rows affected %s", st.table)
		}
	}

	if batchID != "" && d == (Deleted{}) {
		return Deleted{}, errors.Wrapf(ErrNotFound, "batch %s of account %s", batchID, accountID)
	}
	if err := tx.Commit(); err != nil {
		return Deleted{}, errors.Wrap(err, "commit delete")
	}
	log.Info().
		Str("account", accountID).
		Str("batch", batchID).
		Int64("transactions", d.Transactions).
		Int64("segments", d.Segments).
		Int64("uploads", d.Uploads).
		Msg("data deleted")
	return d, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
