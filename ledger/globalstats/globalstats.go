// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package globalstats keeps ledger-wide aggregates: the treasury pool that
// absorbs slashed value and rounding dust, prover counts and lifetime flow
// totals. Nothing here is consulted by accounting formulas.
package globalstats

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/provex/provex/ledger/storage"
)

var (
	slotTreasury         = storage.NameToSlot("stats-treasury")
	slotProverCount      = storage.NameToSlot("stats-prover-count")
	slotActiveCount      = storage.NameToSlot("stats-active-prover-count")
	slotTotalSlashed     = storage.NameToSlot("stats-total-slashed")
	slotTotalRewardsPaid = storage.NameToSlot("stats-total-rewards-paid")
)

// Service reads and writes ledger-wide aggregates.
type Service struct {
	treasury         *storage.Uint256
	proverCount      *storage.Uint64
	activeCount      *storage.Uint64
	totalSlashed     *storage.Uint256
	totalRewardsPaid *storage.Uint256
}

// New creates a globalstats service bound to sctx.
func New(sctx *storage.Context) *Service {
	return &Service{
		treasury:         storage.NewUint256(sctx, slotTreasury),
		proverCount:      storage.NewUint64(sctx, slotProverCount),
		activeCount:      storage.NewUint64(sctx, slotActiveCount),
		totalSlashed:     storage.NewUint256(sctx, slotTotalSlashed),
		totalRewardsPaid: storage.NewUint256(sctx, slotTotalRewardsPaid),
	}
}

// Treasury returns the accumulated slashed value and rounding dust.
func (s *Service) Treasury() (*big.Int, error) {
	return s.treasury.Get()
}

// AddTreasury grows the treasury pool.
func (s *Service) AddTreasury(amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	return s.treasury.Add(amount)
}

// ProverCount returns the number of registered, non-retired provers.
func (s *Service) ProverCount() (uint64, error) {
	return s.proverCount.Get()
}

// ActiveProverCount returns the number of provers in the active state.
func (s *Service) ActiveProverCount() (uint64, error) {
	return s.activeCount.Get()
}

// AddProver bumps the prover count on registration.
func (s *Service) AddProver() error {
	count, err := s.proverCount.Get()
	if err != nil {
		return err
	}
	s.proverCount.Set(count + 1)
	return nil
}

// SubProver drops the prover count on retirement.
func (s *Service) SubProver() error {
	count, err := s.proverCount.Get()
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("prover count underflow")
	}
	s.proverCount.Set(count - 1)
	return nil
}

// AddActiveProver bumps the active count.
func (s *Service) AddActiveProver() error {
	count, err := s.activeCount.Get()
	if err != nil {
		return err
	}
	s.activeCount.Set(count + 1)
	return nil
}

// SubActiveProver drops the active count.
func (s *Service) SubActiveProver() error {
	count, err := s.activeCount.Get()
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("active prover count underflow")
	}
	s.activeCount.Set(count - 1)
	return nil
}

// AddTotalSlashed grows the lifetime slashed total.
func (s *Service) AddTotalSlashed(amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	return s.totalSlashed.Add(amount)
}

// TotalSlashed returns the lifetime slashed total.
func (s *Service) TotalSlashed() (*big.Int, error) {
	return s.totalSlashed.Get()
}

// AddTotalRewardsPaid grows the lifetime withdrawn-rewards total.
func (s *Service) AddTotalRewardsPaid(amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	return s.totalRewardsPaid.Add(amount)
}

// TotalRewardsPaid returns the lifetime withdrawn-rewards total.
func (s *Service) TotalRewardsPaid() (*big.Int, error) {
	return s.totalRewardsPaid.Get()
}
