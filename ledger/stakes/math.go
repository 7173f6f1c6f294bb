// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"

	"github.com/provex/provex/provex"
)

// MintShares converts an asset amount into raw shares at the given scale:
// shares = amount * ScaleUnit / scale. A staker joining after a slash mints
// proportionally more shares and so is not diluted by pre-existing damage.
func MintShares(amount, scale *big.Int) *big.Int {
	shares := new(big.Int).Mul(amount, provex.ScaleUnit())
	return shares.Quo(shares, scale)
}

// EffectiveAmount converts raw shares back into asset units at the given
// scale: amount = shares * scale / ScaleUnit.
func EffectiveAmount(rawShares, scale *big.Int) *big.Int {
	amount := new(big.Int).Mul(rawShares, scale)
	return amount.Quo(amount, provex.ScaleUnit())
}

// Accrue evaluates an acc-per-share accumulator for a share count:
// rawShares * acc / ScaleUnit.
func Accrue(rawShares, acc *big.Int) *big.Int {
	accrued := new(big.Int).Mul(rawShares, acc)
	return accrued.Quo(accrued, provex.ScaleUnit())
}
