// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards implements the O(1) reward distribution arithmetic: the
// commission split and the acc-per-raw-share accumulator delta. Nothing here
// touches storage; the facade applies the returned distribution to the
// affected prover account.
package rewards

import (
	"math/big"

	"github.com/provex/provex/provex"
)

// Distribution is the exact decomposition of one reward credit.
// Commission + StakersPortion + Dust == the credited amount, always.
type Distribution struct {
	Commission     *big.Int // prover's cut, credited to pending commission
	StakersPortion *big.Int // amount actually carried by the accumulator delta
	Dust           *big.Int // rounding remainder, routed to the treasury pool
	DeltaAcc       *big.Int // increment of accRewardPerRawShare (ScaleUnit fixed point)
}

// Split decomposes amount between the prover's commission and its stakers.
//
// When the prover has no stakers the whole amount becomes commission; the
// operation never fails for lack of recipients. Otherwise the stakers'
// portion is folded into the accumulator and the integer-division remainder
// is reported as dust rather than silently lost or misattributed.
func Split(amount *big.Int, commissionRateBps uint64, totalRawShares *big.Int) *Distribution {
	commission := new(big.Int).Mul(amount, new(big.Int).SetUint64(commissionRateBps))
	commission.Quo(commission, big.NewInt(provex.CommissionDenominatorBps))
	stakers := new(big.Int).Sub(amount, commission)

	if totalRawShares.Sign() == 0 {
		// no stakers exist to receive the remainder
		return &Distribution{
			Commission:     commission.Add(commission, stakers),
			StakersPortion: new(big.Int),
			Dust:           new(big.Int),
			DeltaAcc:       new(big.Int),
		}
	}

	deltaAcc := new(big.Int).Mul(stakers, provex.ScaleUnit())
	deltaAcc.Quo(deltaAcc, totalRawShares)

	distributed := new(big.Int).Mul(deltaAcc, totalRawShares)
	distributed.Quo(distributed, provex.ScaleUnit())

	dust := new(big.Int).Sub(stakers, distributed)

	return &Distribution{
		Commission:     commission,
		StakersPortion: distributed,
		Dust:           dust,
		DeltaAcc:       deltaAcc,
	}
}
