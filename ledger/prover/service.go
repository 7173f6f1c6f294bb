// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package prover

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/provex/provex/ledger/storage"
	"github.com/provex/provex/provex"
)

var slotAccounts = storage.NameToSlot("prover-accounts")

// Service persists prover accounts.
type Service struct {
	accounts *storage.Mapping[provex.Address, Account]
}

// New creates a prover service bound to sctx.
func New(sctx *storage.Context) *Service {
	return &Service{
		accounts: storage.NewMapping[provex.Address, Account](sctx, slotAccounts),
	}
}

// Get returns the account of addr, an empty (StateNull) account when the
// prover never registered.
func (s *Service) Get(addr provex.Address) (*Account, error) {
	account, err := s.accounts.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get prover account")
	}
	if account == nil {
		return NewAccount(), nil
	}
	normalize(account)
	return account, nil
}

// Set persists the account of addr.
func (s *Service) Set(addr provex.Address, account *Account) error {
	if err := s.accounts.Set(addr, account); err != nil {
		return errors.Wrap(err, "failed to set prover account")
	}
	return nil
}

// normalize guards against nil big fields after decoding.
func normalize(a *Account) {
	for _, field := range []**big.Int{
		&a.MinSelfStake, &a.TotalRawShares, &a.UnbondingRawShares, &a.Scale,
		&a.AccRewardPerRawShare, &a.AccEmissionPerRawShare, &a.EmissionDebt,
		&a.PendingCommission,
	} {
		if *field == nil {
			*field = new(big.Int)
		}
	}
}
