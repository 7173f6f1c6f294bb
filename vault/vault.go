// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault keeps the balances of the backing asset. The ledger moves
// staked principal, rewards and the emission budget through a single custody
// account held here; nothing in this package knows about staking semantics.
package vault

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/provex/provex/ledger/storage"
	"github.com/provex/provex/provex"
)

var (
	slotBalances    = storage.NameToSlot("vault-balances")
	slotTotalSupply = storage.NameToSlot("vault-total-supply")
)

// ErrInsufficientBalance is returned when a transfer exceeds the sender's
// balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Vault provides balance accounting over a storage context.
type Vault struct {
	balances *storage.Mapping[provex.Address, big.Int]
	supply   *storage.Uint256
}

// New creates a vault bound to sctx.
func New(sctx *storage.Context) *Vault {
	return &Vault{
		balances: storage.NewMapping[provex.Address, big.Int](sctx, slotBalances),
		supply:   storage.NewUint256(sctx, slotTotalSupply),
	}
}

// Balance returns the balance of addr, zero when the account is unknown.
func (v *Vault) Balance(addr provex.Address) (*big.Int, error) {
	balance, err := v.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if balance == nil {
		return new(big.Int), nil
	}
	return balance, nil
}

// TotalSupply returns the sum of all balances.
func (v *Vault) TotalSupply() (*big.Int, error) {
	return v.supply.Get()
}

// Mint credits newly issued tokens to addr. Only genesis and test fixtures
// call this; regular operations move existing balances.
func (v *Vault) Mint(addr provex.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("mint amount cannot be negative")
	}
	balance, err := v.Balance(addr)
	if err != nil {
		return err
	}
	balance = new(big.Int).Add(balance, amount)
	if err := v.balances.Set(addr, balance); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return v.supply.Add(amount)
}

// Transfer moves amount from one account to another.
func (v *Vault) Transfer(from, to provex.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("transfer amount cannot be negative")
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	fromBalance, err := v.Balance(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBalance, err := v.Balance(to)
	if err != nil {
		return err
	}
	fromBalance = new(big.Int).Sub(fromBalance, amount)
	toBalance = new(big.Int).Add(toBalance, amount)
	if err := v.balances.Set(from, fromBalance); err != nil {
		return errors.Wrap(err, "failed to set sender balance")
	}
	if err := v.balances.Set(to, toBalance); err != nil {
		return errors.Wrap(err, "failed to set receiver balance")
	}
	return nil
}
