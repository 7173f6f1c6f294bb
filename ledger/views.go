// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/provex/provex/ledger/prover"
	"github.com/provex/provex/ledger/stakes"
	"github.com/provex/provex/provex"
)

// Views run the same settlement logic as mutating operations against a
// throwaway storage context, so projected entitlements at `now` are exact,
// and never commit anything.

// ProverInfo is the projection of one prover account.
type ProverInfo struct {
	Address             provex.Address    `json:"address"`
	State               string            `json:"state"`
	CommissionRateBps   uint64            `json:"commissionRateBps"`
	MinSelfStake        *big.Int          `json:"minSelfStake"`
	PendingMinSelfStake *MinSelfStakeInfo `json:"pendingMinSelfStake,omitempty"`
	TotalRawShares      *big.Int          `json:"totalRawShares"`
	UnbondingRawShares  *big.Int          `json:"unbondingRawShares"`
	EffectiveStake      *big.Int          `json:"effectiveStake"`
	Scale               *big.Int          `json:"scale"`
	PendingCommission   *big.Int          `json:"pendingCommission"`
	StakerCount         uint64            `json:"stakerCount"`
	RegisteredAt        uint64            `json:"registeredAt"`
}

// MinSelfStakeInfo is a scheduled self-stake requirement decrease.
type MinSelfStakeInfo struct {
	Target      *big.Int `json:"target"`
	EffectiveAt uint64   `json:"effectiveAt"`
}

// StakeInfo is the projection of one staker's position with one prover.
type StakeInfo struct {
	Prover          provex.Address `json:"prover"`
	Staker          provex.Address `json:"staker"`
	RawShares       *big.Int       `json:"rawShares"`
	EffectiveStake  *big.Int       `json:"effectiveStake"`
	PendingRewards  *big.Int       `json:"pendingRewards"`
	PendingUnstakes []UnstakeInfo  `json:"pendingUnstakes"`
}

// UnstakeInfo is one queued withdrawal request, valued at the current scale.
type UnstakeInfo struct {
	RawShares      *big.Int `json:"rawShares"`
	EffectiveValue *big.Int `json:"effectiveValue"`
	RequestTime    uint64   `json:"requestTime"`
	AvailableAt    uint64   `json:"availableAt"`
}

// StatsInfo aggregates ledger-wide totals.
type StatsInfo struct {
	ProverCount               uint64   `json:"proverCount"`
	ActiveProverCount         uint64   `json:"activeProverCount"`
	TotalEffectiveActiveStake *big.Int `json:"totalEffectiveActiveStake"`
	Treasury                  *big.Int `json:"treasury"`
	TotalSlashed              *big.Int `json:"totalSlashed"`
	TotalRewardsPaid          *big.Int `json:"totalRewardsPaid"`
	EmissionRate              *big.Int `json:"emissionRate"`
	EmissionBudget            *big.Int `json:"emissionBudget"`
	LastEmissionUpdate        uint64   `json:"lastEmissionUpdate"`
	CustodyBalance            *big.Int `json:"custodyBalance"`
}

// GetProver returns the prover's account projected to now. Streaming accrual
// up to now is reflected in the pending commission.
func (l *Ledger) GetProver(addr provex.Address, now uint64) (*ProverInfo, error) {
	l.global.RLock()
	defer l.global.RUnlock()

	svc := l.newServices()
	acct, err := l.loadProver(svc, addr, now)
	if err != nil {
		return nil, err
	}
	if acct.IsEmpty() {
		return nil, errors.Wrap(ErrInvalidState, "unknown prover")
	}

	info := &ProverInfo{
		Address:            addr,
		State:              prover.StateName(acct.State),
		CommissionRateBps:  acct.CommissionRateBps,
		MinSelfStake:       acct.MinSelfStake,
		TotalRawShares:     acct.TotalRawShares,
		UnbondingRawShares: acct.UnbondingRawShares,
		EffectiveStake:     acct.EffectiveStake(),
		Scale:              acct.Scale,
		PendingCommission:  acct.PendingCommission,
		StakerCount:        acct.StakerCount,
		RegisteredAt:       acct.RegisteredAt,
	}
	if pending := acct.PendingMinSelfStakeUpdate; pending != nil {
		info.PendingMinSelfStake = &MinSelfStakeInfo{
			Target:      pending.Target,
			EffectiveAt: pending.EffectiveAt,
		}
	}
	return info, nil
}

// GetStake returns the staker's position with the prover, with rewards
// settled (projected) to now.
func (l *Ledger) GetStake(proverAddr, staker provex.Address, now uint64) (*StakeInfo, error) {
	l.global.RLock()
	defer l.global.RUnlock()

	svc := l.newServices()
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return nil, err
	}
	rec, err := svc.stakes.Get(proverAddr, staker)
	if err != nil {
		return nil, err
	}
	rec.Settle(acct.AccRewardPerRawShare, acct.AccEmissionPerRawShare)

	delay, err := svc.params.UnstakeDelay()
	if err != nil {
		return nil, err
	}
	return &StakeInfo{
		Prover:          proverAddr,
		Staker:          staker,
		RawShares:       rec.RawShares,
		EffectiveStake:  acct.EffectiveOf(rec.RawShares),
		PendingRewards:  rec.PendingRewards,
		PendingUnstakes: unstakeInfos(rec.PendingUnstakes, acct, delay),
	}, nil
}

// PendingUnstakes returns the staker's queued withdrawal requests with the
// prover, valued at the current scale.
func (l *Ledger) PendingUnstakes(proverAddr, staker provex.Address, now uint64) ([]UnstakeInfo, error) {
	l.global.RLock()
	defer l.global.RUnlock()

	svc := l.newServices()
	acct, err := svc.provers.Get(proverAddr)
	if err != nil {
		return nil, err
	}
	rec, err := svc.stakes.Get(proverAddr, staker)
	if err != nil {
		return nil, err
	}
	delay, err := svc.params.UnstakeDelay()
	if err != nil {
		return nil, err
	}
	return unstakeInfos(rec.PendingUnstakes, acct, delay), nil
}

func unstakeInfos(pending []stakes.PendingUnstake, acct *prover.Account, delay uint64) []UnstakeInfo {
	infos := make([]UnstakeInfo, 0, len(pending))
	for _, req := range pending {
		infos = append(infos, UnstakeInfo{
			RawShares:      req.RawShares,
			EffectiveValue: acct.EffectiveOf(req.RawShares),
			RequestTime:    req.RequestTime,
			AvailableAt:    req.RequestTime + delay,
		})
	}
	return infos
}

// Stakers walks the prover's enumeration list and returns up to limit staker
// addresses. Zero limit returns the full list.
func (l *Ledger) Stakers(proverAddr provex.Address, limit uint64) ([]provex.Address, error) {
	l.global.RLock()
	defer l.global.RUnlock()

	svc := l.newServices()
	acct, err := svc.provers.Get(proverAddr)
	if err != nil {
		return nil, err
	}
	if limit == 0 || limit > acct.StakerCount {
		limit = acct.StakerCount
	}
	addrs := make([]provex.Address, 0, limit)
	cursor := acct.StakersHead
	for cursor != nil && uint64(len(addrs)) < limit {
		addrs = append(addrs, *cursor)
		rec, err := svc.stakes.Get(proverAddr, *cursor)
		if err != nil {
			return nil, err
		}
		cursor = rec.Next
	}
	return addrs, nil
}

// IsEligible reports whether the prover may be assigned proof work: Active
// and holding at least minimumEffectiveStake. The effective stake is returned
// either way.
func (l *Ledger) IsEligible(proverAddr provex.Address, minimumEffectiveStake *big.Int) (bool, *big.Int, error) {
	l.global.RLock()
	defer l.global.RUnlock()

	svc := l.newServices()
	acct, err := svc.provers.Get(proverAddr)
	if err != nil {
		return false, nil, err
	}
	eff := acct.EffectiveStake()
	eligible := acct.State == prover.StateActive && eff.Cmp(minimumEffectiveStake) >= 0
	return eligible, eff, nil
}

// Owner returns the configured owner address.
func (l *Ledger) Owner() (provex.Address, error) {
	l.global.RLock()
	defer l.global.RUnlock()

	return l.newServices().params.Owner()
}

// Balance returns the vault balance of addr.
func (l *Ledger) Balance(addr provex.Address) (*big.Int, error) {
	l.global.RLock()
	defer l.global.RUnlock()

	return l.newServices().vault.Balance(addr)
}

// Stats returns ledger-wide totals with emission projected to now.
func (l *Ledger) Stats(now uint64) (*StatsInfo, error) {
	l.global.RLock()
	defer l.global.RUnlock()

	svc := l.newServices()
	if err := svc.emission.Update(now); err != nil {
		return nil, err
	}

	info := &StatsInfo{}
	var err error
	if info.ProverCount, err = svc.stats.ProverCount(); err != nil {
		return nil, err
	}
	if info.ActiveProverCount, err = svc.stats.ActiveProverCount(); err != nil {
		return nil, err
	}
	if info.TotalEffectiveActiveStake, err = svc.emission.TotalEffectiveActiveStake(); err != nil {
		return nil, err
	}
	if info.Treasury, err = svc.stats.Treasury(); err != nil {
		return nil, err
	}
	if info.TotalSlashed, err = svc.stats.TotalSlashed(); err != nil {
		return nil, err
	}
	if info.TotalRewardsPaid, err = svc.stats.TotalRewardsPaid(); err != nil {
		return nil, err
	}
	if info.EmissionRate, err = svc.emission.Rate(); err != nil {
		return nil, err
	}
	if info.EmissionBudget, err = svc.emission.Budget(); err != nil {
		return nil, err
	}
	if info.LastEmissionUpdate, err = svc.emission.LastUpdate(); err != nil {
		return nil, err
	}
	if info.CustodyBalance, err = svc.vault.Balance(CustodyAddress); err != nil {
		return nil, err
	}
	return info, nil
}
