// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package emission implements the streaming reward engine: a funded budget
// drained at a fixed rate per second, shared across provers in proportion to
// their effective active stake through a single global accumulator.
package emission

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/provex/provex/ledger/storage"
	"github.com/provex/provex/provex"
)

var (
	slotAcc            = storage.NameToSlot("emission-acc")
	slotRate           = storage.NameToSlot("emission-rate")
	slotBudget         = storage.NameToSlot("emission-budget")
	slotLastUpdate     = storage.NameToSlot("emission-last-update")
	slotTotalEffective = storage.NameToSlot("emission-total-effective")
)

// Service advances the global emission accumulator.
//
// The accumulator counts emitted value per unit of effective active stake, in
// ScaleUnit fixed point. A prover's entitlement is effectiveStake*acc/ScaleUnit
// minus its recorded debt; the facade settles that difference into the
// prover's own accumulator whenever the prover is touched.
type Service struct {
	acc            *storage.Uint256
	rate           *storage.Uint256
	budget         *storage.Uint256
	lastUpdate     *storage.Uint64
	totalEffective *storage.Uint256
}

// New creates an emission service bound to sctx.
func New(sctx *storage.Context) *Service {
	return &Service{
		acc:            storage.NewUint256(sctx, slotAcc),
		rate:           storage.NewUint256(sctx, slotRate),
		budget:         storage.NewUint256(sctx, slotBudget),
		lastUpdate:     storage.NewUint64(sctx, slotLastUpdate),
		totalEffective: storage.NewUint256(sctx, slotTotalEffective),
	}
}

// Update advances the accumulator to now. It must run before any operation
// that changes the effective active stake population, otherwise the elapsed
// interval would be attributed to the wrong share mix.
//
// Emission pauses, budget intact, whenever the rate is zero, the budget is
// exhausted or no effective active stake exists.
func (s *Service) Update(now uint64) error {
	last, err := s.lastUpdate.Get()
	if err != nil {
		return err
	}
	if last == 0 || now <= last {
		if last == 0 {
			s.lastUpdate.Set(now)
		}
		return nil
	}

	rate, err := s.rate.Get()
	if err != nil {
		return err
	}
	budget, err := s.budget.Get()
	if err != nil {
		return err
	}
	totalEffective, err := s.totalEffective.Get()
	if err != nil {
		return err
	}

	s.lastUpdate.Set(now)
	if rate.Sign() == 0 || budget.Sign() == 0 || totalEffective.Sign() == 0 {
		return nil
	}

	emitted := new(big.Int).Mul(rate, new(big.Int).SetUint64(now-last))
	if emitted.Cmp(budget) > 0 {
		emitted = budget
	}

	deltaAcc := new(big.Int).Mul(emitted, provex.ScaleUnit())
	deltaAcc.Quo(deltaAcc, totalEffective)
	if deltaAcc.Sign() == 0 {
		// interval too small to move the accumulator; leave the budget
		// untouched so the value is emitted on a later update
		return nil
	}

	// only what the accumulator actually carries leaves the budget
	distributed := new(big.Int).Mul(deltaAcc, totalEffective)
	distributed.Quo(distributed, provex.ScaleUnit())

	if err := s.acc.Add(deltaAcc); err != nil {
		return err
	}
	return s.budget.Sub(distributed)
}

// Acc returns the global accumulator value.
func (s *Service) Acc() (*big.Int, error) {
	return s.acc.Get()
}

// TotalEffectiveActiveStake returns the stake population currently sharing
// the emission stream.
func (s *Service) TotalEffectiveActiveStake() (*big.Int, error) {
	return s.totalEffective.Get()
}

// AddActiveStake grows the emission-sharing population. Callers must have run
// Update first.
func (s *Service) AddActiveStake(amount *big.Int) error {
	return s.totalEffective.Add(amount)
}

// SubActiveStake shrinks the emission-sharing population. Callers must have
// run Update first.
func (s *Service) SubActiveStake(amount *big.Int) error {
	if err := s.totalEffective.Sub(amount); err != nil {
		return errors.Wrap(err, "emission stake accounting")
	}
	return nil
}

// Rate returns the emission rate in value per second.
func (s *Service) Rate() (*big.Int, error) {
	return s.rate.Get()
}

// SetRate updates the emission rate.
func (s *Service) SetRate(rate *big.Int) error {
	if rate.Sign() < 0 {
		return errors.New("emission rate cannot be negative")
	}
	return s.rate.Set(rate)
}

// Budget returns the undistributed emission budget.
func (s *Service) Budget() (*big.Int, error) {
	return s.budget.Get()
}

// Fund enlarges the emission budget.
func (s *Service) Fund(amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errors.New("emission funding must be positive")
	}
	return s.budget.Add(amount)
}

// LastUpdate returns the timestamp the accumulator was last advanced to.
func (s *Service) LastUpdate() (uint64, error) {
	return s.lastUpdate.Get()
}
