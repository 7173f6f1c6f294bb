// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakes keeps the per-staker, per-prover stake records: raw shares,
// reward debts, settled-but-unclaimed rewards and the bounded delayed-unstake
// queue. Raw shares are invariant to slashing; all repricing happens through
// the prover's scale factor.
package stakes

import (
	"math/big"

	"github.com/provex/provex/provex"
)

// PendingUnstake is one delayed withdrawal request. The scale snapshot taken
// at request time is not used for the payout (the current scale is, so
// intervening slashes apply); it quantifies the slashed remainder left behind
// in custody when the request completes.
type PendingUnstake struct {
	RawShares     *big.Int
	RequestTime   uint64
	ScaleSnapshot *big.Int
}

// Record is the stake position of one staker with one prover.
type Record struct {
	RawShares          *big.Int
	RewardDebt         *big.Int // baseline against the prover's event-reward accumulator
	RewardDebtEmission *big.Int // baseline against the prover's streaming-reward accumulator
	PendingRewards     *big.Int
	PendingUnstakes    []PendingUnstake

	// staker enumeration list, UX only
	Prev *provex.Address `rlp:"nil"`
	Next *provex.Address `rlp:"nil"`
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{
		RawShares:          new(big.Int),
		RewardDebt:         new(big.Int),
		RewardDebtEmission: new(big.Int),
		PendingRewards:     new(big.Int),
	}
}

// IsEmpty reports whether the record holds nothing worth persisting.
func (r *Record) IsEmpty() bool {
	return r.RawShares.Sign() == 0 &&
		r.PendingRewards.Sign() == 0 &&
		len(r.PendingUnstakes) == 0
}

// Settle folds the accrual since the last settlement into PendingRewards and
// advances both debt baselines. It MUST run before any change to RawShares;
// entitlement computed against a stale baseline would be lost or paid twice.
func (r *Record) Settle(accReward, accEmission *big.Int) {
	accrued := Accrue(r.RawShares, accReward)
	r.PendingRewards = new(big.Int).Add(r.PendingRewards, new(big.Int).Sub(accrued, r.RewardDebt))
	r.RewardDebt = accrued

	accruedEmission := Accrue(r.RawShares, accEmission)
	r.PendingRewards.Add(r.PendingRewards, new(big.Int).Sub(accruedEmission, r.RewardDebtEmission))
	r.RewardDebtEmission = accruedEmission
}

// ResetDebts re-baselines both debts for the current share count. Called
// after RawShares changed (and after Settle ran against the old count).
func (r *Record) ResetDebts(accReward, accEmission *big.Int) {
	r.RewardDebt = Accrue(r.RawShares, accReward)
	r.RewardDebtEmission = Accrue(r.RawShares, accEmission)
}

// QueueUnstake appends a delayed withdrawal request. It reports false when
// the queue is at capacity.
func (r *Record) QueueUnstake(rawShares *big.Int, now uint64, scaleSnapshot *big.Int) bool {
	if len(r.PendingUnstakes) >= provex.MaxPendingUnstakes {
		return false
	}
	r.PendingUnstakes = append(r.PendingUnstakes, PendingUnstake{
		RawShares:     new(big.Int).Set(rawShares),
		RequestTime:   now,
		ScaleSnapshot: new(big.Int).Set(scaleSnapshot),
	})
	return true
}

// TakeEligibleUnstakes removes and returns the leading requests whose delay
// has elapsed. The queue is chronological, so the walk stops at the first
// request still cooling down.
func (r *Record) TakeEligibleUnstakes(now, delay uint64) []PendingUnstake {
	eligible := 0
	for _, req := range r.PendingUnstakes {
		if now < req.RequestTime+delay {
			break
		}
		eligible++
	}
	if eligible == 0 {
		return nil
	}
	taken := r.PendingUnstakes[:eligible]
	r.PendingUnstakes = append([]PendingUnstake(nil), r.PendingUnstakes[eligible:]...)
	return taken
}
