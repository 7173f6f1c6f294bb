// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package prover keeps the per-prover aggregate: lifecycle state, the scale
// factor encoding cumulative slashing, the reward accumulators and the share
// totals. Every accounting formula of the ledger divides by one of these
// fields, so the aggregate is only ever mutated under the serialization the
// facade provides.
package prover

import (
	"math/big"

	"github.com/provex/provex/provex"
)

// State is the lifecycle tag of a prover account.
type State = uint8

const (
	StateNull        = State(iota) // never registered
	StateActive                    // accepting delegation, accruing streaming rewards
	StateRetired                   // fully exited; re-registration opens a fresh accounting epoch
	StateDeactivated               // excluded from streaming rewards and new stake
)

// StateName returns a human readable state tag.
func StateName(s State) string {
	switch s {
	case StateActive:
		return "active"
	case StateRetired:
		return "retired"
	case StateDeactivated:
		return "deactivated"
	default:
		return "null"
	}
}

// MinSelfStakeUpdate is a scheduled decrease of the self-stake requirement.
// Increases apply immediately and never appear here.
type MinSelfStakeUpdate struct {
	Target      *big.Int
	EffectiveAt uint64
}

// Account is the aggregate record of one registered prover.
type Account struct {
	State                     State
	CommissionRateBps         uint64
	MinSelfStake              *big.Int
	PendingMinSelfStakeUpdate *MinSelfStakeUpdate `rlp:"nil"`

	TotalRawShares     *big.Int // sum of all stakers' active raw shares, incl. self
	UnbondingRawShares *big.Int // raw shares parked in pending-unstake queues
	Scale              *big.Int // fixed point, ScaleUnit == 1.0, never increases within an epoch

	AccRewardPerRawShare   *big.Int // event-triggered rewards accumulator
	AccEmissionPerRawShare *big.Int // streaming rewards accumulator
	EmissionDebt           *big.Int // baseline against the global emission accumulator
	PendingCommission      *big.Int

	RegisteredAt uint64

	// staker enumeration list, UX only, never iterated for accounting
	StakerCount uint64
	StakersHead *provex.Address `rlp:"nil"`
	StakersTail *provex.Address `rlp:"nil"`
}

// NewAccount returns an unregistered account.
func NewAccount() *Account {
	return &Account{
		State:                  StateNull,
		MinSelfStake:           new(big.Int),
		TotalRawShares:         new(big.Int),
		UnbondingRawShares:     new(big.Int),
		Scale:                  new(big.Int),
		AccRewardPerRawShare:   new(big.Int),
		AccEmissionPerRawShare: new(big.Int),
		EmissionDebt:           new(big.Int),
		PendingCommission:      new(big.Int),
	}
}

// IsEmpty reports whether the account was never registered.
func (a *Account) IsEmpty() bool {
	return a.State == StateNull
}

// EffectiveStake is the current real value of all active raw shares.
func (a *Account) EffectiveStake() *big.Int {
	return effective(a.TotalRawShares, a.Scale)
}

// EffectiveOf converts a raw share count at the account's current scale.
func (a *Account) EffectiveOf(rawShares *big.Int) *big.Int {
	return effective(rawShares, a.Scale)
}

// ResolveMinSelfStake applies a scheduled decrease once its delay elapsed.
// It reports whether the account changed.
func (a *Account) ResolveMinSelfStake(now uint64) bool {
	pending := a.PendingMinSelfStakeUpdate
	if pending == nil || now < pending.EffectiveAt {
		return false
	}
	a.MinSelfStake = pending.Target
	a.PendingMinSelfStakeUpdate = nil
	return true
}

// CanRetire reports whether nothing keeps the account alive: no active
// shares, no shares cooling down, no unclaimed commission. The unbonding
// condition matters because a later re-registration resets the scale, which
// must never reprice in-flight unstake requests.
func (a *Account) CanRetire() bool {
	return a.TotalRawShares.Sign() == 0 &&
		a.UnbondingRawShares.Sign() == 0 &&
		a.PendingCommission.Sign() == 0
}

func effective(rawShares, scale *big.Int) *big.Int {
	amount := new(big.Int).Mul(rawShares, scale)
	return amount.Quo(amount, provex.ScaleUnit())
}
