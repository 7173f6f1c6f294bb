// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params holds the owner-controlled configuration of the ledger and
// the slashing capability set. Values are effects-only: no accounting formula
// depends on when they change.
package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/provex/provex/ledger/storage"
	"github.com/provex/provex/provex"
)

var (
	slotOwner              = storage.NameToSlot("params-owner")
	slotUnstakeDelay       = storage.NameToSlot("params-unstake-delay")
	slotGlobalMinSelfStake = storage.NameToSlot("params-global-min-self-stake")
	slotHardFloorPpm       = storage.NameToSlot("params-hard-floor-ppm")
	slotSoftThresholdPpm   = storage.NameToSlot("params-soft-threshold-ppm")
	slotMaxSlashPpm        = storage.NameToSlot("params-max-slash-ppm")
	slotSlashers           = storage.NameToSlot("params-slashers")
)

// Service reads and writes ledger configuration.
type Service struct {
	sctx *storage.Context

	unstakeDelay       *storage.Uint64
	globalMinSelfStake *storage.Uint256
	hardFloorPpm       *storage.Uint64
	softThresholdPpm   *storage.Uint64
	maxSlashPpm        *storage.Uint64
	slashers           *storage.Mapping[provex.Address, bool]
}

// New creates a params service bound to sctx.
func New(sctx *storage.Context) *Service {
	return &Service{
		sctx:               sctx,
		unstakeDelay:       storage.NewUint64(sctx, slotUnstakeDelay),
		globalMinSelfStake: storage.NewUint256(sctx, slotGlobalMinSelfStake),
		hardFloorPpm:       storage.NewUint64(sctx, slotHardFloorPpm),
		softThresholdPpm:   storage.NewUint64(sctx, slotSoftThresholdPpm),
		maxSlashPpm:        storage.NewUint64(sctx, slotMaxSlashPpm),
		slashers:           storage.NewMapping[provex.Address, bool](sctx, slotSlashers),
	}
}

// Owner returns the configured owner address, zero when never initialized.
func (s *Service) Owner() (provex.Address, error) {
	raw, err := s.sctx.Get(slotOwner)
	if err != nil {
		return provex.Address{}, err
	}
	return provex.BytesToAddress(raw), nil
}

// SetOwner records the owner address.
func (s *Service) SetOwner(owner provex.Address) {
	s.sctx.Put(slotOwner, owner.Bytes())
}

// UnstakeDelay returns the delay between an unstake request and completion.
func (s *Service) UnstakeDelay() (uint64, error) {
	delay, err := s.unstakeDelay.Get()
	if err != nil {
		return 0, err
	}
	if delay == 0 {
		return provex.DefaultUnstakeDelay, nil
	}
	return delay, nil
}

// SetUnstakeDelay updates the unstake delay, bounded to MaxUnstakeDelay.
func (s *Service) SetUnstakeDelay(delay uint64) error {
	if delay == 0 || delay > provex.MaxUnstakeDelay {
		return errors.Errorf("unstake delay must be in (0, %d]", provex.MaxUnstakeDelay)
	}
	s.unstakeDelay.Set(delay)
	return nil
}

// GlobalMinSelfStake returns the minimum self-stake required of future
// registrations.
func (s *Service) GlobalMinSelfStake() (*big.Int, error) {
	return s.globalMinSelfStake.Get()
}

// SetGlobalMinSelfStake updates the registration threshold. Existing provers
// are not affected.
func (s *Service) SetGlobalMinSelfStake(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.New("global min self-stake cannot be negative")
	}
	return s.globalMinSelfStake.Set(value)
}

// SlashFloors returns the hard floor and the soft auto-deactivation threshold,
// both in ppm of the initial scale.
func (s *Service) SlashFloors() (hard uint64, soft uint64, err error) {
	if hard, err = s.hardFloorPpm.Get(); err != nil {
		return 0, 0, err
	}
	if soft, err = s.softThresholdPpm.Get(); err != nil {
		return 0, 0, err
	}
	if hard == 0 {
		hard = provex.DefaultHardFloorPpm
	}
	if soft == 0 {
		soft = provex.DefaultSoftThresholdPpm
	}
	return hard, soft, nil
}

// SetSlashFloors updates the floor pair. The soft threshold must not sit
// below the hard floor.
func (s *Service) SetSlashFloors(hard, soft uint64) error {
	if hard == 0 || soft >= provex.PpmDenominator || soft < hard {
		return errors.New("require 0 < hard <= soft < 100%")
	}
	s.hardFloorPpm.Set(hard)
	s.softThresholdPpm.Set(soft)
	return nil
}

// MaxSlashPpm returns the configured maximum single-slash percentage.
func (s *Service) MaxSlashPpm() (uint64, error) {
	max, err := s.maxSlashPpm.Get()
	if err != nil {
		return 0, err
	}
	if max == 0 {
		return provex.PpmDenominator, nil
	}
	return max, nil
}

// SetMaxSlashPpm updates the maximum single-slash percentage.
func (s *Service) SetMaxSlashPpm(max uint64) error {
	if max == 0 || max > provex.PpmDenominator {
		return errors.New("max slash must be in (0, 100%]")
	}
	s.maxSlashPpm.Set(max)
	return nil
}

// IsSlasher reports whether addr holds the slashing capability.
func (s *Service) IsSlasher(addr provex.Address) (bool, error) {
	granted, err := s.slashers.Get(addr)
	if err != nil {
		return false, err
	}
	return granted != nil && *granted, nil
}

// GrantSlasher grants the slashing capability to addr.
func (s *Service) GrantSlasher(addr provex.Address) error {
	granted := true
	return s.slashers.Set(addr, &granted)
}

// RevokeSlasher removes the slashing capability from addr.
func (s *Service) RevokeSlasher(addr provex.Address) {
	s.slashers.Delete(addr)
}
