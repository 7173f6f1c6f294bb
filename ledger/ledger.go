// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the delegated-staking ledger of the proof
// marketplace. The Ledger facade composes the prover, stakes, rewards,
// slashing, emission, params and globalstats services over a buffered storage
// context, so each operation validates fail-fast, mutates in memory, moves
// assets last and commits as one atomic batch.
//
// Accounting is O(1) in the number of stakers: stake positions are raw
// shares, slashing is a single multiplication on the prover's scale factor,
// and rewards flow through acc-per-raw-share accumulators with per-staker
// debt baselines.
package ledger

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/provex/provex/kv"
	"github.com/provex/provex/ledger/emission"
	"github.com/provex/provex/ledger/globalstats"
	"github.com/provex/provex/ledger/params"
	"github.com/provex/provex/ledger/prover"
	"github.com/provex/provex/ledger/rewards"
	"github.com/provex/provex/ledger/slashing"
	"github.com/provex/provex/ledger/stakes"
	"github.com/provex/provex/ledger/storage"
	"github.com/provex/provex/log"
	"github.com/provex/provex/metrics"
	"github.com/provex/provex/provex"
	"github.com/provex/provex/vault"
)

var logger = log.WithContext("pkg", "ledger")

// CustodyAddress holds all staked principal, undistributed rewards, the
// treasury pool and the emission budget in the vault.
var CustodyAddress = provex.BytesToAddress([]byte("provex-ledger-custody"))

const stripeCount = 64

var metricOpCount = sync.OnceValue(func() metrics.CountVecMeter {
	return metrics.CounterVec("ledger_op_count", []string{"op", "status"})
})

func countOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "err"
	}
	metricOpCount().AddWithLabel(1, map[string]string{"op": op, "status": status})
}

// Ledger is the staking facade. All methods are safe for concurrent use.
type Ledger struct {
	store kv.GetPutter

	stripes [stripeCount]sync.Mutex
	global  sync.RWMutex
}

// New creates a ledger over the given store.
func New(store kv.GetPutter) *Ledger {
	return &Ledger{store: store}
}

// services bundles the sub-services of one operation, all sharing a single
// buffered storage context.
type services struct {
	sctx     *storage.Context
	provers  *prover.Service
	stakes   *stakes.Service
	params   *params.Service
	emission *emission.Service
	stats    *globalstats.Service
	vault    *vault.Vault
}

func (l *Ledger) newServices() *services {
	sctx := storage.NewContext(l.store)
	return &services{
		sctx:     sctx,
		provers:  prover.New(sctx),
		stakes:   stakes.New(sctx),
		params:   params.New(sctx),
		emission: emission.New(sctx),
		stats:    globalstats.New(sctx),
		vault:    vault.New(sctx),
	}
}

// lockProver serializes mutation of one prover's aggregate. The stripe is
// always acquired before the global lock.
func (l *Ledger) lockProver(addr provex.Address) func() {
	stripe := &l.stripes[int(addr[0])%stripeCount]
	stripe.Lock()
	l.global.Lock()
	return func() {
		l.global.Unlock()
		stripe.Unlock()
	}
}

func (l *Ledger) lockGlobal() func() {
	l.global.Lock()
	return l.global.Unlock
}

func (l *Ledger) commit(svc *services) error {
	return svc.sctx.CommitTo(l.store)
}

// loadProver advances the emission engine to now, loads the account, resolves
// a matured min-self-stake decrease and settles the prover's streaming
// accrual. Every mutating operation goes through here so no interval is ever
// attributed to a stale share mix.
func (l *Ledger) loadProver(svc *services, addr provex.Address, now uint64) (*prover.Account, error) {
	if err := svc.emission.Update(now); err != nil {
		return nil, err
	}
	acct, err := svc.provers.Get(addr)
	if err != nil {
		return nil, err
	}
	acct.ResolveMinSelfStake(now)
	if err := l.settleEmission(svc, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// settleEmission folds the prover's share of global emission since its last
// settlement into its own accumulator, split by commission, with dust to the
// treasury.
func (l *Ledger) settleEmission(svc *services, acct *prover.Account) error {
	if acct.State != prover.StateActive {
		return nil
	}
	globalAcc, err := svc.emission.Acc()
	if err != nil {
		return err
	}
	accrued := stakes.Accrue(acct.EffectiveStake(), globalAcc)
	delta := new(big.Int).Sub(accrued, acct.EmissionDebt)
	if delta.Sign() > 0 {
		dist := rewards.Split(delta, acct.CommissionRateBps, acct.TotalRawShares)
		acct.PendingCommission = new(big.Int).Add(acct.PendingCommission, dist.Commission)
		acct.AccEmissionPerRawShare = new(big.Int).Add(acct.AccEmissionPerRawShare, dist.DeltaAcc)
		if err := svc.stats.AddTreasury(dist.Dust); err != nil {
			return err
		}
	}
	acct.EmissionDebt = accrued
	return nil
}

// rebaseEmissionDebt re-baselines the prover's emission debt after its
// effective active stake changed.
func (l *Ledger) rebaseEmissionDebt(svc *services, acct *prover.Account) error {
	globalAcc, err := svc.emission.Acc()
	if err != nil {
		return err
	}
	acct.EmissionDebt = stakes.Accrue(acct.EffectiveStake(), globalAcc)
	return nil
}

func (l *Ledger) requireOwner(svc *services, caller provex.Address) error {
	owner, err := svc.params.Owner()
	if err != nil {
		return err
	}
	if owner.IsZero() || owner != caller {
		return errors.Wrap(ErrUnauthorized, "owner required")
	}
	return nil
}

// maybeRetire transitions the account to Retired once nothing keeps it
// alive. Stakers holding only settled rewards can still withdraw afterwards.
func (l *Ledger) maybeRetire(svc *services, addr provex.Address, acct *prover.Account) error {
	if acct.State != prover.StateActive && acct.State != prover.StateDeactivated {
		return nil
	}
	if !acct.CanRetire() {
		return nil
	}
	if acct.State == prover.StateActive {
		if err := svc.stats.SubActiveProver(); err != nil {
			return err
		}
	}
	acct.State = prover.StateRetired
	acct.EmissionDebt = new(big.Int)
	acct.PendingMinSelfStakeUpdate = nil
	if err := svc.stats.SubProver(); err != nil {
		return err
	}
	logger.Info("prover retired", "prover", addr)
	return nil
}

// GenesisAccount is one initial vault allocation.
type GenesisAccount struct {
	Address provex.Address
	Balance *big.Int
}

// ApplyGenesis sets the owner and mints the initial allocations. It is a
// no-op when the ledger was already initialized.
func (l *Ledger) ApplyGenesis(owner provex.Address, alloc []GenesisAccount) error {
	defer l.lockGlobal()()

	svc := l.newServices()
	current, err := svc.params.Owner()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		logger.Debug("ledger already initialized", "owner", current)
		return nil
	}
	svc.params.SetOwner(owner)
	for _, acc := range alloc {
		if err := svc.vault.Mint(acc.Address, acc.Balance); err != nil {
			return errors.Wrap(err, "genesis mint")
		}
	}
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Info("ledger initialized", "owner", owner, "allocations", len(alloc))
	return nil
}

// Register creates an Active prover with an initial self-stake. A Retired
// prover may register again; the new accounting epoch starts with a fresh
// scale and zeroed accumulators.
func (l *Ledger) Register(proverAddr provex.Address, selfStake *big.Int, commissionBps uint64, minSelfStake *big.Int, now uint64) (err error) {
	defer func() { countOp("register", err) }()
	defer l.lockProver(proverAddr)()

	if selfStake == nil || selfStake.Sign() <= 0 {
		return ErrZeroAmount
	}
	if commissionBps > provex.CommissionDenominatorBps {
		return ErrInvalidCommissionRate
	}
	if minSelfStake == nil || minSelfStake.Sign() < 0 {
		return errors.Wrap(ErrBelowMinSelfStake, "negative minimum")
	}

	svc := l.newServices()
	old, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return err
	}
	if old.State != prover.StateNull && old.State != prover.StateRetired {
		return errors.Wrap(ErrInvalidState, "already registered")
	}

	globalMin, err := svc.params.GlobalMinSelfStake()
	if err != nil {
		return err
	}
	if minSelfStake.Cmp(globalMin) < 0 {
		return errors.Wrap(ErrBelowMinSelfStake, "minimum below global floor")
	}
	if selfStake.Cmp(minSelfStake) < 0 {
		return ErrBelowMinSelfStake
	}

	acct := prover.NewAccount()
	acct.State = prover.StateActive
	acct.CommissionRateBps = commissionBps
	acct.MinSelfStake = new(big.Int).Set(minSelfStake)
	acct.Scale = provex.InitialScale()
	acct.RegisteredAt = now
	// the enumeration list survives an epoch reset: records holding only
	// settled rewards are still linked
	acct.StakerCount = old.StakerCount
	acct.StakersHead = old.StakersHead
	acct.StakersTail = old.StakersTail

	rec, err := svc.stakes.Get(proverAddr, proverAddr)
	if err != nil {
		return err
	}
	wasListed := !rec.IsEmpty()

	shares := stakes.MintShares(selfStake, acct.Scale)
	rec.RawShares = new(big.Int).Add(rec.RawShares, shares)
	rec.ResetDebts(acct.AccRewardPerRawShare, acct.AccEmissionPerRawShare)
	acct.TotalRawShares = new(big.Int).Set(shares)

	if !wasListed {
		if err := listAppend(svc, proverAddr, acct, proverAddr, rec); err != nil {
			return err
		}
	}

	eff := acct.EffectiveStake()
	if err := svc.emission.AddActiveStake(eff); err != nil {
		return err
	}
	if err := l.rebaseEmissionDebt(svc, acct); err != nil {
		return err
	}
	if dust := new(big.Int).Sub(selfStake, eff); dust.Sign() > 0 {
		if err := svc.stats.AddTreasury(dust); err != nil {
			return err
		}
	}
	if err := svc.stats.AddProver(); err != nil {
		return err
	}
	if err := svc.stats.AddActiveProver(); err != nil {
		return err
	}

	if err := svc.stakes.Set(proverAddr, proverAddr, rec); err != nil {
		return err
	}
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return err
	}
	if err := svc.vault.Transfer(proverAddr, CustodyAddress, selfStake); err != nil {
		return err
	}
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Info("prover registered", "prover", proverAddr, "selfStake", selfStake, "commissionBps", commissionBps)
	return nil
}

// Stake delegates amount to an Active prover, minting raw shares at the
// prover's current scale.
func (l *Ledger) Stake(staker, proverAddr provex.Address, amount *big.Int, now uint64) (err error) {
	defer func() { countOp("stake", err) }()
	defer l.lockProver(proverAddr)()

	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	svc := l.newServices()
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return err
	}
	if acct.State != prover.StateActive {
		return errors.Wrapf(ErrInvalidState, "prover is %s", prover.StateName(acct.State))
	}
	// delegation requires the prover's effective self-stake to meet its
	// minimum; slashing can break that while the prover stays Active
	if staker != proverAddr {
		selfRec, err := svc.stakes.Get(proverAddr, proverAddr)
		if err != nil {
			return err
		}
		if acct.EffectiveOf(selfRec.RawShares).Cmp(acct.MinSelfStake) < 0 {
			return errors.Wrap(ErrBelowMinSelfStake, "prover self-stake below its minimum")
		}
	}

	rec, err := svc.stakes.Get(proverAddr, staker)
	if err != nil {
		return err
	}
	wasListed := !rec.IsEmpty()
	rec.Settle(acct.AccRewardPerRawShare, acct.AccEmissionPerRawShare)

	shares := stakes.MintShares(amount, acct.Scale)
	if shares.Sign() == 0 {
		return ErrZeroAmount
	}
	rec.RawShares = new(big.Int).Add(rec.RawShares, shares)
	rec.ResetDebts(acct.AccRewardPerRawShare, acct.AccEmissionPerRawShare)

	effBefore := acct.EffectiveStake()
	acct.TotalRawShares = new(big.Int).Add(acct.TotalRawShares, shares)
	effAfter := acct.EffectiveStake()
	increase := new(big.Int).Sub(effAfter, effBefore)

	if err := svc.emission.AddActiveStake(increase); err != nil {
		return err
	}
	if err := l.rebaseEmissionDebt(svc, acct); err != nil {
		return err
	}
	if dust := new(big.Int).Sub(amount, increase); dust.Sign() > 0 {
		if err := svc.stats.AddTreasury(dust); err != nil {
			return err
		}
	}

	if !wasListed {
		if err := listAppend(svc, proverAddr, acct, staker, rec); err != nil {
			return err
		}
	}

	if err := svc.stakes.Set(proverAddr, staker, rec); err != nil {
		return err
	}
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return err
	}
	if err := svc.vault.Transfer(staker, CustodyAddress, amount); err != nil {
		return err
	}
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Debug("stake added", "prover", proverAddr, "staker", staker, "amount", amount, "shares", shares)
	return nil
}

// RequestUnstake queues a delayed withdrawal of up to amount of the staker's
// effective stake. The raw shares leave the active population immediately and
// stop earning rewards; the asset stays in custody until completion.
func (l *Ledger) RequestUnstake(staker, proverAddr provex.Address, amount *big.Int, now uint64) (err error) {
	defer func() { countOp("request_unstake", err) }()
	defer l.lockProver(proverAddr)()

	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	svc := l.newServices()
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return err
	}
	if acct.State == prover.StateNull || acct.State == prover.StateRetired {
		return errors.Wrapf(ErrInvalidState, "prover is %s", prover.StateName(acct.State))
	}

	rec, err := svc.stakes.Get(proverAddr, staker)
	if err != nil {
		return err
	}
	rec.Settle(acct.AccRewardPerRawShare, acct.AccEmissionPerRawShare)

	eff := acct.EffectiveOf(rec.RawShares)
	if eff.Sign() == 0 || amount.Cmp(eff) > 0 {
		return ErrInsufficientStake
	}

	var shares *big.Int
	if amount.Cmp(eff) == 0 {
		shares = new(big.Int).Set(rec.RawShares)
	} else {
		shares = stakes.MintShares(amount, acct.Scale)
		if shares.Sign() == 0 {
			return ErrZeroAmount
		}
		if shares.Cmp(rec.RawShares) > 0 {
			shares = new(big.Int).Set(rec.RawShares)
		}
	}

	// a partial reduction may not land in (0, minSelfStake); a full exit is
	// always permitted
	if staker == proverAddr && acct.State == prover.StateActive {
		remaining := acct.EffectiveOf(new(big.Int).Sub(rec.RawShares, shares))
		if remaining.Sign() > 0 && remaining.Cmp(acct.MinSelfStake) < 0 {
			return errors.Wrap(ErrBelowMinSelfStake, "partial self-unstake below minimum")
		}
	}

	if !rec.QueueUnstake(shares, now, acct.Scale) {
		return ErrTooManyPendingUnstakes
	}
	rec.RawShares = new(big.Int).Sub(rec.RawShares, shares)
	rec.ResetDebts(acct.AccRewardPerRawShare, acct.AccEmissionPerRawShare)

	effBefore := acct.EffectiveStake()
	acct.TotalRawShares = new(big.Int).Sub(acct.TotalRawShares, shares)
	acct.UnbondingRawShares = new(big.Int).Add(acct.UnbondingRawShares, shares)
	effAfter := acct.EffectiveStake()

	if acct.State == prover.StateActive {
		if err := svc.emission.SubActiveStake(new(big.Int).Sub(effBefore, effAfter)); err != nil {
			return err
		}
		if err := l.rebaseEmissionDebt(svc, acct); err != nil {
			return err
		}
	}

	if err := svc.stakes.Set(proverAddr, staker, rec); err != nil {
		return err
	}
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return err
	}
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Debug("unstake requested", "prover", proverAddr, "staker", staker, "shares", shares)
	return nil
}

// CompleteUnstake pays out every queued request whose delay has elapsed, at
// the prover's current scale. Value lost to slashes since the request is
// routed to the treasury. Returns the amount paid.
func (l *Ledger) CompleteUnstake(staker, proverAddr provex.Address, now uint64) (paid *big.Int, err error) {
	defer func() { countOp("complete_unstake", err) }()
	defer l.lockProver(proverAddr)()

	svc := l.newServices()
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return nil, err
	}
	if acct.State == prover.StateNull {
		return nil, errors.Wrap(ErrInvalidState, "unknown prover")
	}

	rec, err := svc.stakes.Get(proverAddr, staker)
	if err != nil {
		return nil, err
	}
	rec.Settle(acct.AccRewardPerRawShare, acct.AccEmissionPerRawShare)

	if len(rec.PendingUnstakes) == 0 {
		return nil, ErrNoUnstakeRequest
	}
	delay, err := svc.params.UnstakeDelay()
	if err != nil {
		return nil, err
	}
	taken := rec.TakeEligibleUnstakes(now, delay)
	if len(taken) == 0 {
		return nil, ErrUnstakeNotReady
	}

	paid = new(big.Int)
	slashed := new(big.Int)
	unbonded := new(big.Int)
	for _, req := range taken {
		paid.Add(paid, stakes.EffectiveAmount(req.RawShares, acct.Scale))
		remainder := new(big.Int).Sub(
			stakes.EffectiveAmount(req.RawShares, req.ScaleSnapshot),
			stakes.EffectiveAmount(req.RawShares, acct.Scale),
		)
		if remainder.Sign() > 0 {
			slashed.Add(slashed, remainder)
		}
		unbonded.Add(unbonded, req.RawShares)
	}

	acct.UnbondingRawShares = new(big.Int).Sub(acct.UnbondingRawShares, unbonded)
	if acct.UnbondingRawShares.Sign() < 0 {
		return nil, errors.New("unbonding shares underflow")
	}
	if err := svc.stats.AddTreasury(slashed); err != nil {
		return nil, err
	}

	if rec.IsEmpty() {
		if err := listRemove(svc, proverAddr, acct, staker, rec); err != nil {
			return nil, err
		}
		svc.stakes.Delete(proverAddr, staker)
	} else if err := svc.stakes.Set(proverAddr, staker, rec); err != nil {
		return nil, err
	}

	if err := l.maybeRetire(svc, proverAddr, acct); err != nil {
		return nil, err
	}
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return nil, err
	}
	if err := svc.vault.Transfer(CustodyAddress, staker, paid); err != nil {
		return nil, err
	}
	if err := l.commit(svc); err != nil {
		return nil, err
	}
	logger.Debug("unstake completed", "prover", proverAddr, "staker", staker, "paid", paid, "toTreasury", slashed)
	return paid, nil
}

// WithdrawRewards pays out the caller's settled rewards with this prover.
// When the caller is the prover itself, pending commission is paid out too.
// Returns the amount paid.
func (l *Ledger) WithdrawRewards(caller, proverAddr provex.Address, now uint64) (paid *big.Int, err error) {
	defer func() { countOp("withdraw_rewards", err) }()
	defer l.lockProver(proverAddr)()

	svc := l.newServices()
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return nil, err
	}
	if acct.State == prover.StateNull {
		return nil, errors.Wrap(ErrInvalidState, "unknown prover")
	}

	rec, err := svc.stakes.Get(proverAddr, caller)
	if err != nil {
		return nil, err
	}
	rec.Settle(acct.AccRewardPerRawShare, acct.AccEmissionPerRawShare)

	paid = new(big.Int).Set(rec.PendingRewards)
	rec.PendingRewards = new(big.Int)
	if caller == proverAddr {
		paid.Add(paid, acct.PendingCommission)
		acct.PendingCommission = new(big.Int)
	}
	if paid.Sign() == 0 {
		return nil, ErrNoRewardsAvailable
	}
	if err := svc.stats.AddTotalRewardsPaid(paid); err != nil {
		return nil, err
	}

	if rec.IsEmpty() {
		if err := listRemove(svc, proverAddr, acct, caller, rec); err != nil {
			return nil, err
		}
		svc.stakes.Delete(proverAddr, caller)
	} else if err := svc.stakes.Set(proverAddr, caller, rec); err != nil {
		return nil, err
	}

	if err := l.maybeRetire(svc, proverAddr, acct); err != nil {
		return nil, err
	}
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return nil, err
	}
	if err := svc.vault.Transfer(CustodyAddress, caller, paid); err != nil {
		return nil, err
	}
	if err := l.commit(svc); err != nil {
		return nil, err
	}
	logger.Debug("rewards withdrawn", "prover", proverAddr, "staker", caller, "paid", paid)
	return paid, nil
}

// Deactivate removes an Active prover from the emission stream and blocks new
// stake. Callable by the prover itself or the owner.
func (l *Ledger) Deactivate(caller, proverAddr provex.Address, now uint64) (err error) {
	defer func() { countOp("deactivate", err) }()
	defer l.lockProver(proverAddr)()

	svc := l.newServices()
	if caller != proverAddr {
		if err := l.requireOwner(svc, caller); err != nil {
			return err
		}
	}
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return err
	}
	if acct.State != prover.StateActive {
		return errors.Wrapf(ErrInvalidState, "prover is %s", prover.StateName(acct.State))
	}

	if err := svc.emission.SubActiveStake(acct.EffectiveStake()); err != nil {
		return err
	}
	acct.State = prover.StateDeactivated
	acct.EmissionDebt = new(big.Int)
	if err := svc.stats.SubActiveProver(); err != nil {
		return err
	}
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return err
	}
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Info("prover deactivated", "prover", proverAddr, "caller", caller)
	return nil
}

// Reactivate returns a Deactivated prover to the Active state, provided its
// self-stake still meets the minimum at the current scale.
func (l *Ledger) Reactivate(caller, proverAddr provex.Address, now uint64) (err error) {
	defer func() { countOp("reactivate", err) }()
	defer l.lockProver(proverAddr)()

	svc := l.newServices()
	if caller != proverAddr {
		if err := l.requireOwner(svc, caller); err != nil {
			return err
		}
	}
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return err
	}
	if acct.State != prover.StateDeactivated {
		return errors.Wrapf(ErrInvalidState, "prover is %s", prover.StateName(acct.State))
	}

	selfRec, err := svc.stakes.Get(proverAddr, proverAddr)
	if err != nil {
		return err
	}
	if acct.EffectiveOf(selfRec.RawShares).Cmp(acct.MinSelfStake) < 0 {
		return errors.Wrap(ErrBelowMinSelfStake, "top up self-stake first")
	}

	acct.State = prover.StateActive
	if err := svc.emission.AddActiveStake(acct.EffectiveStake()); err != nil {
		return err
	}
	if err := l.rebaseEmissionDebt(svc, acct); err != nil {
		return err
	}
	if err := svc.stats.AddActiveProver(); err != nil {
		return err
	}
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return err
	}
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Info("prover reactivated", "prover", proverAddr, "caller", caller)
	return nil
}

// CreditRewards distributes an event reward for completed proof work: the
// prover's commission cut plus a pro-rata share for every current staker, in
// O(1) via the accumulator. With no stakers the full amount becomes
// commission. Returns the commission and the stakers' portion.
func (l *Ledger) CreditRewards(caller, proverAddr provex.Address, amount *big.Int, now uint64) (commission, stakersPortion *big.Int, err error) {
	defer func() { countOp("credit_rewards", err) }()
	defer l.lockProver(proverAddr)()

	if amount == nil || amount.Sign() <= 0 {
		return nil, nil, ErrZeroAmount
	}

	svc := l.newServices()
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return nil, nil, err
	}
	if acct.State != prover.StateActive && acct.State != prover.StateDeactivated {
		return nil, nil, errors.Wrapf(ErrInvalidState, "prover is %s", prover.StateName(acct.State))
	}

	dist := rewards.Split(amount, acct.CommissionRateBps, acct.TotalRawShares)
	acct.PendingCommission = new(big.Int).Add(acct.PendingCommission, dist.Commission)
	acct.AccRewardPerRawShare = new(big.Int).Add(acct.AccRewardPerRawShare, dist.DeltaAcc)
	if err := svc.stats.AddTreasury(dist.Dust); err != nil {
		return nil, nil, err
	}

	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return nil, nil, err
	}
	if err := svc.vault.Transfer(caller, CustodyAddress, amount); err != nil {
		return nil, nil, err
	}
	if err := l.commit(svc); err != nil {
		return nil, nil, err
	}
	logger.Debug("rewards credited", "prover", proverAddr, "amount", amount, "commission", dist.Commission)
	return dist.Commission, dist.StakersPortion, nil
}

// SlashByPercentage reduces the prover's scale by ppm parts per million.
// Active and in-flight unstake positions are repriced alike. Returns the
// value removed from active stake.
func (l *Ledger) SlashByPercentage(slasher, proverAddr provex.Address, ppm uint64, now uint64) (slashed *big.Int, err error) {
	defer func() { countOp("slash", err) }()
	defer l.lockProver(proverAddr)()

	svc := l.newServices()
	if err := l.requireSlasher(svc, slasher); err != nil {
		return nil, err
	}
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return nil, err
	}
	if acct.State != prover.StateActive && acct.State != prover.StateDeactivated {
		return nil, errors.Wrapf(ErrInvalidState, "prover is %s", prover.StateName(acct.State))
	}
	return l.applySlash(svc, proverAddr, acct, ppm)
}

// SlashByAmount converts an absolute amount into a percentage of the current
// effective active stake and slashes by it. Returns the value removed from
// active stake, which can differ from amount by rounding.
func (l *Ledger) SlashByAmount(slasher, proverAddr provex.Address, amount *big.Int, now uint64) (slashed *big.Int, err error) {
	defer func() { countOp("slash", err) }()
	defer l.lockProver(proverAddr)()

	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	svc := l.newServices()
	if err := l.requireSlasher(svc, slasher); err != nil {
		return nil, err
	}
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return nil, err
	}
	if acct.State != prover.StateActive && acct.State != prover.StateDeactivated {
		return nil, errors.Wrapf(ErrInvalidState, "prover is %s", prover.StateName(acct.State))
	}
	ppm, err := slashing.AmountToPpm(amount, acct.EffectiveStake())
	if err != nil {
		return nil, errors.Wrap(ErrSlashTooHigh, err.Error())
	}
	if ppm == 0 {
		return nil, errors.Wrap(ErrZeroAmount, "amount below slash resolution")
	}
	return l.applySlash(svc, proverAddr, acct, ppm)
}

func (l *Ledger) requireSlasher(svc *services, caller provex.Address) error {
	granted, err := svc.params.IsSlasher(caller)
	if err != nil {
		return err
	}
	if granted {
		return nil
	}
	owner, err := svc.params.Owner()
	if err != nil {
		return err
	}
	if !owner.IsZero() && owner == caller {
		return nil
	}
	return errors.Wrap(ErrUnauthorized, "slasher capability required")
}

func (l *Ledger) applySlash(svc *services, proverAddr provex.Address, acct *prover.Account, ppm uint64) (*big.Int, error) {
	hard, soft, err := svc.params.SlashFloors()
	if err != nil {
		return nil, err
	}
	maxPpm, err := svc.params.MaxSlashPpm()
	if err != nil {
		return nil, err
	}
	res, err := slashing.Apply(acct.Scale, acct.TotalRawShares, ppm, slashing.Rules{
		HardFloorPpm:     hard,
		SoftThresholdPpm: soft,
		MaxSlashPpm:      maxPpm,
	})
	if err != nil {
		if errors.Is(err, slashing.ErrTooHigh) {
			return nil, errors.Wrap(ErrSlashTooHigh, err.Error())
		}
		return nil, err
	}

	effBefore := acct.EffectiveStake()
	acct.Scale = res.NewScale
	effAfter := acct.EffectiveStake()

	if acct.State == prover.StateActive {
		if res.Deactivate {
			if err := svc.emission.SubActiveStake(effBefore); err != nil {
				return nil, err
			}
			acct.State = prover.StateDeactivated
			acct.EmissionDebt = new(big.Int)
			if err := svc.stats.SubActiveProver(); err != nil {
				return nil, err
			}
			logger.Warn("prover deactivated by slash", "prover", proverAddr, "scale", acct.Scale)
		} else {
			if err := svc.emission.SubActiveStake(new(big.Int).Sub(effBefore, effAfter)); err != nil {
				return nil, err
			}
			if err := l.rebaseEmissionDebt(svc, acct); err != nil {
				return nil, err
			}
		}
	} else if res.Deactivate {
		// already Deactivated, nothing to transition
		res.Deactivate = false
	}

	if err := svc.stats.AddTreasury(res.SlashedActive); err != nil {
		return nil, err
	}
	if err := svc.stats.AddTotalSlashed(res.SlashedActive); err != nil {
		return nil, err
	}
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return nil, err
	}
	if err := l.commit(svc); err != nil {
		return nil, err
	}
	logger.Info("prover slashed", "prover", proverAddr, "ppm", ppm, "slashed", res.SlashedActive, "scale", acct.Scale)
	return res.SlashedActive, nil
}

// SetCommissionRate updates the prover's commission for rewards distributed
// from now on. Already-accrued value keeps the old split.
func (l *Ledger) SetCommissionRate(proverAddr provex.Address, bps uint64, now uint64) (err error) {
	defer func() { countOp("set_commission", err) }()
	defer l.lockProver(proverAddr)()

	if bps > provex.CommissionDenominatorBps {
		return ErrInvalidCommissionRate
	}
	svc := l.newServices()
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return err
	}
	if acct.State != prover.StateActive && acct.State != prover.StateDeactivated {
		return errors.Wrapf(ErrInvalidState, "prover is %s", prover.StateName(acct.State))
	}
	acct.CommissionRateBps = bps
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return err
	}
	return l.commit(svc)
}

// UpdateMinSelfStake raises the prover's self-stake requirement immediately,
// or schedules a decrease behind the unstake delay so the requirement cannot
// be dodged right before misbehaving.
func (l *Ledger) UpdateMinSelfStake(proverAddr provex.Address, target *big.Int, now uint64) (err error) {
	defer func() { countOp("update_min_self_stake", err) }()
	defer l.lockProver(proverAddr)()

	if target == nil || target.Sign() < 0 {
		return ErrZeroAmount
	}
	svc := l.newServices()
	acct, err := l.loadProver(svc, proverAddr, now)
	if err != nil {
		return err
	}
	if acct.State != prover.StateActive && acct.State != prover.StateDeactivated {
		return errors.Wrapf(ErrInvalidState, "prover is %s", prover.StateName(acct.State))
	}

	if target.Cmp(acct.MinSelfStake) >= 0 {
		acct.MinSelfStake = new(big.Int).Set(target)
		acct.PendingMinSelfStakeUpdate = nil
	} else {
		delay, err := svc.params.UnstakeDelay()
		if err != nil {
			return err
		}
		acct.PendingMinSelfStakeUpdate = &prover.MinSelfStakeUpdate{
			Target:      new(big.Int).Set(target),
			EffectiveAt: now + delay,
		}
	}
	if err := svc.provers.Set(proverAddr, acct); err != nil {
		return err
	}
	return l.commit(svc)
}

// UpdateEmission advances the streaming emission accumulator to now. Anyone
// may call it; all mutating operations do so implicitly.
func (l *Ledger) UpdateEmission(now uint64) (err error) {
	defer func() { countOp("update_emission", err) }()
	defer l.lockGlobal()()

	svc := l.newServices()
	if err := svc.emission.Update(now); err != nil {
		return err
	}
	return l.commit(svc)
}

// FundEmission moves amount from the funder into the emission budget.
func (l *Ledger) FundEmission(from provex.Address, amount *big.Int, now uint64) (err error) {
	defer func() { countOp("fund_emission", err) }()
	defer l.lockGlobal()()

	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	svc := l.newServices()
	if err := svc.emission.Update(now); err != nil {
		return err
	}
	if err := svc.emission.Fund(amount); err != nil {
		return err
	}
	if err := svc.vault.Transfer(from, CustodyAddress, amount); err != nil {
		return err
	}
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Info("emission funded", "from", from, "amount", amount)
	return nil
}

// SetEmissionRate updates the per-second emission rate. The elapsed interval
// is settled at the old rate first.
func (l *Ledger) SetEmissionRate(caller provex.Address, rate *big.Int, now uint64) (err error) {
	defer func() { countOp("set_emission_rate", err) }()
	defer l.lockGlobal()()

	svc := l.newServices()
	if err := l.requireOwner(svc, caller); err != nil {
		return err
	}
	if err := svc.emission.Update(now); err != nil {
		return err
	}
	if err := svc.emission.SetRate(rate); err != nil {
		return err
	}
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Info("emission rate set", "rate", rate)
	return nil
}

// SetUnstakeDelay updates the cooldown of future unstake requests.
func (l *Ledger) SetUnstakeDelay(caller provex.Address, seconds uint64) (err error) {
	defer func() { countOp("set_unstake_delay", err) }()
	defer l.lockGlobal()()

	svc := l.newServices()
	if err := l.requireOwner(svc, caller); err != nil {
		return err
	}
	if err := svc.params.SetUnstakeDelay(seconds); err != nil {
		return err
	}
	return l.commit(svc)
}

// SetGlobalMinSelfStake updates the registration threshold. Existing provers
// keep their own minimum.
func (l *Ledger) SetGlobalMinSelfStake(caller provex.Address, value *big.Int) (err error) {
	defer func() { countOp("set_global_min_self_stake", err) }()
	defer l.lockGlobal()()

	svc := l.newServices()
	if err := l.requireOwner(svc, caller); err != nil {
		return err
	}
	if err := svc.params.SetGlobalMinSelfStake(value); err != nil {
		return err
	}
	return l.commit(svc)
}

// SetSlashFloors updates the hard floor and soft auto-deactivation threshold.
func (l *Ledger) SetSlashFloors(caller provex.Address, hardPpm, softPpm uint64) (err error) {
	defer func() { countOp("set_slash_floors", err) }()
	defer l.lockGlobal()()

	svc := l.newServices()
	if err := l.requireOwner(svc, caller); err != nil {
		return err
	}
	if err := svc.params.SetSlashFloors(hardPpm, softPpm); err != nil {
		return err
	}
	return l.commit(svc)
}

// SetMaxSlashPpm updates the single-slash percentage cap.
func (l *Ledger) SetMaxSlashPpm(caller provex.Address, ppm uint64) (err error) {
	defer func() { countOp("set_max_slash", err) }()
	defer l.lockGlobal()()

	svc := l.newServices()
	if err := l.requireOwner(svc, caller); err != nil {
		return err
	}
	if err := svc.params.SetMaxSlashPpm(ppm); err != nil {
		return err
	}
	return l.commit(svc)
}

// GrantSlasher grants the slashing capability to addr.
func (l *Ledger) GrantSlasher(caller, addr provex.Address) (err error) {
	defer func() { countOp("grant_slasher", err) }()
	defer l.lockGlobal()()

	svc := l.newServices()
	if err := l.requireOwner(svc, caller); err != nil {
		return err
	}
	if err := svc.params.GrantSlasher(addr); err != nil {
		return err
	}
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Info("slasher granted", "addr", addr)
	return nil
}

// RevokeSlasher removes the slashing capability from addr.
func (l *Ledger) RevokeSlasher(caller, addr provex.Address) (err error) {
	defer func() { countOp("revoke_slasher", err) }()
	defer l.lockGlobal()()

	svc := l.newServices()
	if err := l.requireOwner(svc, caller); err != nil {
		return err
	}
	svc.params.RevokeSlasher(addr)
	if err := l.commit(svc); err != nil {
		return err
	}
	logger.Info("slasher revoked", "addr", addr)
	return nil
}
