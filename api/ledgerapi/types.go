// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledgerapi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/provex/provex/provex"
)

// Request amounts accept both decimal and 0x-prefixed hex encodings.

// RegisterRequest creates a prover.
type RegisterRequest struct {
	Prover            provex.Address        `json:"prover"`
	SelfStake         *math.HexOrDecimal256 `json:"selfStake"`
	CommissionRateBps uint64                `json:"commissionRateBps"`
	MinSelfStake      *math.HexOrDecimal256 `json:"minSelfStake"`
}

// StakeRequest delegates to a prover.
type StakeRequest struct {
	Staker provex.Address        `json:"staker"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// UnstakeRequest queues a delayed withdrawal.
type UnstakeRequest struct {
	Staker provex.Address        `json:"staker"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// CompleteUnstakeRequest pays out matured withdrawal requests.
type CompleteUnstakeRequest struct {
	Staker provex.Address `json:"staker"`
}

// WithdrawRequest claims settled rewards.
type WithdrawRequest struct {
	Caller provex.Address `json:"caller"`
}

// CreditRequest distributes an event reward.
type CreditRequest struct {
	Caller provex.Address        `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// SlashRequest slashes by percentage (ppm) or by absolute amount; exactly one
// of the two must be set.
type SlashRequest struct {
	Slasher provex.Address        `json:"slasher"`
	Ppm     uint64                `json:"ppm,omitempty"`
	Amount  *math.HexOrDecimal256 `json:"amount,omitempty"`
}

// CallerRequest carries only the caller address.
type CallerRequest struct {
	Caller provex.Address `json:"caller"`
}

// CommissionRequest updates the prover's commission rate.
type CommissionRequest struct {
	Bps uint64 `json:"bps"`
}

// MinSelfStakeRequest updates the prover's self-stake requirement.
type MinSelfStakeRequest struct {
	Target *math.HexOrDecimal256 `json:"target"`
}

// FundRequest tops up the emission budget.
type FundRequest struct {
	From   provex.Address        `json:"from"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// RateRequest sets the emission rate.
type RateRequest struct {
	Caller provex.Address        `json:"caller"`
	Rate   *math.HexOrDecimal256 `json:"rate"`
}

// DelayRequest sets the unstake delay.
type DelayRequest struct {
	Caller  provex.Address `json:"caller"`
	Seconds uint64         `json:"seconds"`
}

// GlobalMinRequest sets the global registration threshold.
type GlobalMinRequest struct {
	Caller provex.Address        `json:"caller"`
	Value  *math.HexOrDecimal256 `json:"value"`
}

// FloorsRequest sets the slash floor pair.
type FloorsRequest struct {
	Caller  provex.Address `json:"caller"`
	HardPpm uint64         `json:"hardPpm"`
	SoftPpm uint64         `json:"softPpm"`
}

// MaxSlashRequest sets the single-slash cap.
type MaxSlashRequest struct {
	Caller provex.Address `json:"caller"`
	Ppm    uint64         `json:"ppm"`
}

// SlasherRequest grants or revokes the slashing capability.
type SlasherRequest struct {
	Caller  provex.Address `json:"caller"`
	Address provex.Address `json:"address"`
}

// PaidResponse reports an amount paid out.
type PaidResponse struct {
	Paid *math.HexOrDecimal256 `json:"paid"`
}

// CreditResponse reports a reward distribution.
type CreditResponse struct {
	Commission     *math.HexOrDecimal256 `json:"commission"`
	StakersPortion *math.HexOrDecimal256 `json:"stakersPortion"`
}

// SlashResponse reports the value removed from active stake.
type SlashResponse struct {
	Slashed *math.HexOrDecimal256 `json:"slashed"`
}

// EligibilityResponse reports marketplace eligibility.
type EligibilityResponse struct {
	Eligible       bool                  `json:"eligible"`
	EffectiveStake *math.HexOrDecimal256 `json:"effectiveStake"`
}

// BalanceResponse reports a vault balance.
type BalanceResponse struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
}

func amount(v *math.HexOrDecimal256) (*big.Int, error) {
	if v == nil {
		return nil, errors.New("amount required")
	}
	return (*big.Int)(v), nil
}

func hexOrDec(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(v)
}
