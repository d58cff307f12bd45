package calculator

import (
	"context"
	"sort"

	"rfm-segments/pkg/models"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
)

// Source supplies the transaction snapshot of one account (and optionally one batch).
type Source interface {
	LoadTransactions(ctx context.Context, accountID, batchID string) ([]models.Transaction, error)
}

// StaticSource serves in-memory transaction sets keyed by account id. Batches are ignored.
type StaticSource map[string][]models.Transaction

func (s StaticSource) LoadTransactions(_ context.Context, accountID, _ string) ([]models.Transaction, error) {
	txns, ok := s[accountID]
	if !ok {
		return nil, errors.Newf("unknown account %q", accountID)
	}
	return txns, nil
}

// BatchOptions controls RunAccounts.
type BatchOptions struct {
	Workers int                    // parallel accounts, at least 1
	OnDone  func(accountID string) // called after each successful account, from worker goroutines
}

// RunAccounts loads and computes every account independently and in parallel.
// The first failure cancels the remaining accounts. Reports are ordered by account id.
func RunAccounts(ctx context.Context, src Source, accounts []string, cfg models.Config, opts BatchOptions) ([]Report, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	p := pool.NewWithResults[Report]().
		WithMaxGoroutines(workers).
		WithContext(ctx).
		WithCancelOnError()

	for _, account := range accounts {
		account := account
		p.Go(func(ctx context.Context) (Report, error) {
			txns, err := src.LoadTransactions(ctx, account, cfg.BatchID)
			if err != nil {
				return Report{}, errors.Wrapf(err, "load account %s", account)
			}
			accountCfg := cfg
			accountCfg.AccountID = account
			report, err := Run(ctx, txns, accountCfg)
			if err != nil {
				return Report{}, errors.Wrapf(err, "account %s", account)
			}
			if opts.OnDone != nil {
				opts.OnDone(account)
			}
			return report, nil
		})
	}

	reports, err := p.Wait()
	if err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].AccountID < reports[j].AccountID })
	return reports, nil
}
