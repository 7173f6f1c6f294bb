// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provex/provex/lvldb"
	"github.com/provex/provex/provex"
)

var (
	owner   = provex.BytesToAddress([]byte("owner"))
	prover1 = provex.BytesToAddress([]byte("prover1"))
	prover2 = provex.BytesToAddress([]byte("prover2"))
	stakerB = provex.BytesToAddress([]byte("stakerB"))
	stakerC = provex.BytesToAddress([]byte("stakerC"))
	market  = provex.BytesToAddress([]byte("marketplace"))
)

const t0 = uint64(1_000_000)

func bi(v int64) *big.Int { return big.NewInt(v) }

func newTestLedger(t *testing.T) *Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := New(db)
	require.NoError(t, l.ApplyGenesis(owner, []GenesisAccount{
		{Address: owner, Balance: bi(1_000_000)},
		{Address: prover1, Balance: bi(1_000_000)},
		{Address: prover2, Balance: bi(1_000_000)},
		{Address: stakerB, Balance: bi(1_000_000)},
		{Address: stakerC, Balance: bi(1_000_000)},
		{Address: market, Balance: bi(1_000_000)},
	}))
	return l
}

func balanceOf(t *testing.T, l *Ledger, addr provex.Address) int64 {
	balance, err := l.Balance(addr)
	require.NoError(t, err)
	return balance.Int64()
}

func TestRegister(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Register(prover1, bi(1000), 3000, bi(1000), t0))

	info, err := l.GetProver(prover1, t0)
	require.NoError(t, err)
	assert.Equal(t, "active", info.State)
	assert.Equal(t, uint64(3000), info.CommissionRateBps)
	assert.Equal(t, int64(1000), info.TotalRawShares.Int64())
	assert.Equal(t, int64(1000), info.EffectiveStake.Int64())
	assert.Equal(t, uint64(1), info.StakerCount)
	assert.Equal(t, t0, info.RegisteredAt)

	assert.Equal(t, int64(999_000), balanceOf(t, l, prover1))
	assert.Equal(t, int64(1000), balanceOf(t, l, CustodyAddress))

	err = l.Register(prover1, bi(1000), 3000, bi(1000), t0)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRegisterValidation(t *testing.T) {
	l := newTestLedger(t)

	assert.ErrorIs(t, l.Register(prover1, bi(0), 0, bi(0), t0), ErrZeroAmount)
	assert.ErrorIs(t, l.Register(prover1, bi(1000), 10001, bi(0), t0), ErrInvalidCommissionRate)
	assert.ErrorIs(t, l.Register(prover1, bi(500), 0, bi(1000), t0), ErrBelowMinSelfStake)

	require.NoError(t, l.SetGlobalMinSelfStake(owner, bi(800)))
	assert.ErrorIs(t, l.Register(prover1, bi(1000), 0, bi(500), t0), ErrBelowMinSelfStake)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(800), t0))
}

func TestCreditRewardsSplit(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 3000, bi(1000), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(3000), t0))

	commission, stakersPortion, err := l.CreditRewards(market, prover1, bi(1000), t0)
	require.NoError(t, err)
	assert.Equal(t, int64(300), commission.Int64())
	assert.Equal(t, int64(700), stakersPortion.Int64())

	// B holds 3000 of 4000 raw shares
	paid, err := l.WithdrawRewards(stakerB, prover1, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(525), paid.Int64())

	// the prover collects its own staker share plus commission
	paid, err = l.WithdrawRewards(prover1, prover1, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(475), paid.Int64())

	_, err = l.WithdrawRewards(stakerB, prover1, t0)
	assert.ErrorIs(t, err, ErrNoRewardsAvailable)
}

func TestNoRetroactiveRewards(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))

	_, _, err := l.CreditRewards(market, prover1, bi(900), t0)
	require.NoError(t, err)

	// C joins after the credit and is owed nothing from it
	require.NoError(t, l.Stake(stakerC, prover1, bi(1000), t0))
	_, err = l.WithdrawRewards(stakerC, prover1, t0)
	assert.ErrorIs(t, err, ErrNoRewardsAvailable)

	// the next credit splits across both
	_, _, err = l.CreditRewards(market, prover1, bi(900), t0)
	require.NoError(t, err)
	paid, err := l.WithdrawRewards(stakerC, prover1, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(450), paid.Int64())
}

func TestUnstakeLifecycle(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(800), t0))

	_, err := l.CompleteUnstake(stakerB, prover1, t0)
	assert.ErrorIs(t, err, ErrNoUnstakeRequest)
	assert.ErrorIs(t, l.RequestUnstake(stakerB, prover1, bi(801), t0), ErrInsufficientStake)

	require.NoError(t, l.RequestUnstake(stakerB, prover1, bi(800), t0))

	stake, err := l.GetStake(prover1, stakerB, t0)
	require.NoError(t, err)
	assert.Zero(t, stake.RawShares.Sign())
	require.Len(t, stake.PendingUnstakes, 1)
	assert.Equal(t, t0+provex.DefaultUnstakeDelay, stake.PendingUnstakes[0].AvailableAt)

	// unbonded shares no longer earn rewards
	_, _, err = l.CreditRewards(market, prover1, bi(500), t0)
	require.NoError(t, err)
	_, err = l.WithdrawRewards(stakerB, prover1, t0)
	assert.ErrorIs(t, err, ErrNoRewardsAvailable)

	_, err = l.CompleteUnstake(stakerB, prover1, t0+provex.DefaultUnstakeDelay-1)
	assert.ErrorIs(t, err, ErrUnstakeNotReady)

	paid, err := l.CompleteUnstake(stakerB, prover1, t0+provex.DefaultUnstakeDelay)
	require.NoError(t, err)
	assert.Equal(t, int64(800), paid.Int64())
	assert.Equal(t, int64(1_000_000), balanceOf(t, l, stakerB))
}

func TestUnstakeQueueCap(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(1000), t0))

	for i := 0; i < provex.MaxPendingUnstakes; i++ {
		require.NoError(t, l.RequestUnstake(stakerB, prover1, bi(10), t0+uint64(i)))
	}
	err := l.RequestUnstake(stakerB, prover1, bi(10), t0+20)
	assert.ErrorIs(t, err, ErrTooManyPendingUnstakes)
}

func TestUnstakeThenSlash(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.GrantSlasher(owner, market))
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(800), t0))
	require.NoError(t, l.RequestUnstake(stakerB, prover1, bi(800), t0))

	// 30% slash while B's shares cool down
	slashed, err := l.SlashByPercentage(market, prover1, 300_000, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(300), slashed.Int64()) // 30% of the 1000 active self-stake

	paid, err := l.CompleteUnstake(stakerB, prover1, t0+provex.DefaultUnstakeDelay)
	require.NoError(t, err)
	assert.Equal(t, int64(560), paid.Int64())

	stats, err := l.Stats(t0 + provex.DefaultUnstakeDelay)
	require.NoError(t, err)
	assert.Equal(t, int64(540), stats.Treasury.Int64()) // 300 active + 240 in-flight
	assert.Equal(t, int64(300), stats.TotalSlashed.Int64())

	// custody still covers the remaining self-stake and the treasury
	assert.Equal(t, int64(700+540), balanceOf(t, l, CustodyAddress))
}

func TestRepeatedSlashes(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.GrantSlasher(owner, market))
	require.NoError(t, l.Register(prover1, bi(1600), 0, bi(100), t0))

	// 100% -> 50%: still active
	slashed, err := l.SlashByPercentage(market, prover1, 500_000, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(800), slashed.Int64())
	info, _ := l.GetProver(prover1, t0)
	assert.Equal(t, "active", info.State)

	// 50% -> 25%: crosses the 40% soft threshold
	slashed, err = l.SlashByPercentage(market, prover1, 500_000, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(400), slashed.Int64())
	info, _ = l.GetProver(prover1, t0)
	assert.Equal(t, "deactivated", info.State)

	// deactivated provers accept no new stake and lose eligibility
	assert.ErrorIs(t, l.Stake(stakerB, prover1, bi(100), t0), ErrInvalidState)
	eligible, eff, err := l.IsEligible(prover1, bi(1))
	require.NoError(t, err)
	assert.False(t, eligible)
	assert.Equal(t, int64(400), eff.Int64())

	// 25% -> 12.5%: the hard floor gates entry, not the result
	slashed, err = l.SlashByPercentage(market, prover1, 500_000, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(200), slashed.Int64())

	// 12.5% is below the 20% hard floor: no more slashing
	_, err = l.SlashByPercentage(market, prover1, 500_000, t0)
	assert.ErrorIs(t, err, ErrSlashTooHigh)
}

func TestSlashByAmount(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.GrantSlasher(owner, market))
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(100), t0))

	slashed, err := l.SlashByAmount(market, prover1, bi(300), t0)
	require.NoError(t, err)
	assert.Equal(t, int64(300), slashed.Int64())

	info, _ := l.GetProver(prover1, t0)
	assert.Equal(t, int64(700), info.EffectiveStake.Int64())

	_, err = l.SlashByAmount(market, prover1, bi(700), t0)
	assert.ErrorIs(t, err, ErrSlashTooHigh)
}

func TestSlashAuthorization(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(100), t0))

	_, err := l.SlashByPercentage(market, prover1, 100_000, t0)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// the owner can always slash
	_, err = l.SlashByPercentage(owner, prover1, 100_000, t0)
	require.NoError(t, err)

	require.NoError(t, l.GrantSlasher(owner, market))
	_, err = l.SlashByPercentage(market, prover1, 100_000, t0)
	require.NoError(t, err)

	require.NoError(t, l.RevokeSlasher(owner, market))
	_, err = l.SlashByPercentage(market, prover1, 100_000, t0)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// granting itself is owner-only
	assert.ErrorIs(t, l.GrantSlasher(market, market), ErrUnauthorized)
}

func TestZeroStakerCredit(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 3000, bi(1000), t0))
	require.NoError(t, l.Deactivate(prover1, prover1, t0))
	require.NoError(t, l.RequestUnstake(prover1, prover1, bi(1000), t0))

	// no raw shares remain: the full credit becomes commission
	commission, stakersPortion, err := l.CreditRewards(market, prover1, bi(1000), t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), commission.Int64())
	assert.Zero(t, stakersPortion.Sign())
}

func TestSelfUnstakeBelowMin(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))

	err := l.RequestUnstake(prover1, prover1, bi(1), t0)
	assert.ErrorIs(t, err, ErrBelowMinSelfStake)

	// after deactivation the self-stake floor no longer applies
	require.NoError(t, l.Deactivate(prover1, prover1, t0))
	require.NoError(t, l.RequestUnstake(prover1, prover1, bi(1), t0))
}

func TestSelfFullExitWhileActive(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(500), t0))

	// reducing into (0, minSelfStake) is rejected, a full exit never is
	assert.ErrorIs(t, l.RequestUnstake(prover1, prover1, bi(999), t0), ErrBelowMinSelfStake)
	require.NoError(t, l.RequestUnstake(prover1, prover1, bi(1000), t0))

	// with the self-stake gone, new delegation is refused
	assert.ErrorIs(t, l.Stake(stakerC, prover1, bi(100), t0), ErrBelowMinSelfStake)

	paid, err := l.CompleteUnstake(prover1, prover1, t0+provex.DefaultUnstakeDelay)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), paid.Int64())

	// B's position is untouched by the prover's exit
	stake, err := l.GetStake(prover1, stakerB, t0+provex.DefaultUnstakeDelay)
	require.NoError(t, err)
	assert.Equal(t, int64(500), stake.EffectiveStake.Int64())
}

func TestDelegationRequiresProverSelfStake(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.GrantSlasher(owner, market))
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))

	// a 30% slash leaves the prover active with 700 self-stake against a
	// 1000 minimum
	_, err := l.SlashByPercentage(market, prover1, 300_000, t0)
	require.NoError(t, err)
	info, err := l.GetProver(prover1, t0)
	require.NoError(t, err)
	assert.Equal(t, "active", info.State)

	assert.ErrorIs(t, l.Stake(stakerB, prover1, bi(500), t0), ErrBelowMinSelfStake)

	// the prover may always top itself up; delegation reopens once the
	// minimum is met again
	require.NoError(t, l.Stake(prover1, prover1, bi(400), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(500), t0))
}

func TestUpdateMinSelfStake(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(2000), 0, bi(1000), t0))

	// increases apply immediately
	require.NoError(t, l.UpdateMinSelfStake(prover1, bi(1500), t0))
	info, err := l.GetProver(prover1, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), info.MinSelfStake.Int64())
	assert.Nil(t, info.PendingMinSelfStake)

	// decreases wait out the unstake delay
	require.NoError(t, l.UpdateMinSelfStake(prover1, bi(500), t0))
	info, err = l.GetProver(prover1, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), info.MinSelfStake.Int64())
	require.NotNil(t, info.PendingMinSelfStake)
	assert.Equal(t, int64(500), info.PendingMinSelfStake.Target.Int64())

	matured := t0 + provex.DefaultUnstakeDelay
	info, err = l.GetProver(prover1, matured)
	require.NoError(t, err)
	assert.Equal(t, int64(500), info.MinSelfStake.Int64())
	assert.Nil(t, info.PendingMinSelfStake)

	// and the resolved floor binds self-unstakes
	require.NoError(t, l.RequestUnstake(prover1, prover1, bi(1500), matured))
	assert.ErrorIs(t, l.RequestUnstake(prover1, prover1, bi(1), matured), ErrBelowMinSelfStake)
}

func TestDeactivateReactivate(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.GrantSlasher(owner, market))
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))

	assert.ErrorIs(t, l.Reactivate(prover1, prover1, t0), ErrInvalidState)
	require.NoError(t, l.Deactivate(prover1, prover1, t0))
	assert.ErrorIs(t, l.Deactivate(prover1, prover1, t0), ErrInvalidState)
	assert.ErrorIs(t, l.Deactivate(stakerB, prover1, t0), ErrUnauthorized)

	require.NoError(t, l.Reactivate(prover1, prover1, t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(100), t0))

	// a slashed prover cannot reactivate below its own minimum
	_, err := l.SlashByPercentage(market, prover1, 300_000, t0)
	require.NoError(t, err)
	require.NoError(t, l.Deactivate(prover1, prover1, t0))
	assert.ErrorIs(t, l.Reactivate(prover1, prover1, t0), ErrBelowMinSelfStake)
}

func TestEmissionStreaming(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(100), t0))
	require.NoError(t, l.Register(prover2, bi(3000), 0, bi(100), t0))
	require.NoError(t, l.FundEmission(owner, bi(10_000), t0))
	require.NoError(t, l.SetEmissionRate(owner, bi(40), t0))

	// 100s at 40/s, shared 1000:3000
	paid, err := l.WithdrawRewards(prover1, prover1, t0+100)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), paid.Int64())

	paid, err = l.WithdrawRewards(prover2, prover2, t0+100)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), paid.Int64())

	stats, err := l.Stats(t0 + 100)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), stats.EmissionBudget.Int64())

	// deactivated provers drop out of the stream
	require.NoError(t, l.Deactivate(prover1, prover1, t0+100))
	require.NoError(t, l.SetEmissionRate(owner, bi(30), t0+100))
	paid, err = l.WithdrawRewards(prover2, prover2, t0+200)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), paid.Int64())
	_, err = l.WithdrawRewards(prover1, prover1, t0+200)
	assert.ErrorIs(t, err, ErrNoRewardsAvailable)
}

func TestEmissionCommission(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 2500, bi(100), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(3000), t0))
	require.NoError(t, l.FundEmission(owner, bi(100_000), t0))
	require.NoError(t, l.SetEmissionRate(owner, bi(10), t0))

	// 100s at 10/s: 1000 emitted, 250 commission, 750 across 4000 shares
	paid, err := l.WithdrawRewards(stakerB, prover1, t0+100)
	require.NoError(t, err)
	assert.Equal(t, int64(562), paid.Int64()) // 750 * 3/4, floored

	paid, err = l.WithdrawRewards(prover1, prover1, t0+100)
	require.NoError(t, err)
	assert.Equal(t, int64(437), paid.Int64()) // 250 + 750/4, floored
}

func TestRetireAndReregister(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(500), t0))

	require.NoError(t, l.Deactivate(prover1, prover1, t0))
	require.NoError(t, l.RequestUnstake(stakerB, prover1, bi(500), t0))
	require.NoError(t, l.RequestUnstake(prover1, prover1, bi(1000), t0))

	matured := t0 + provex.DefaultUnstakeDelay
	_, err := l.CompleteUnstake(stakerB, prover1, matured)
	require.NoError(t, err)
	info, err := l.GetProver(prover1, matured)
	require.NoError(t, err)
	assert.Equal(t, "deactivated", info.State)

	// the last completion empties the account and retires it
	_, err = l.CompleteUnstake(prover1, prover1, matured)
	require.NoError(t, err)
	info, err = l.GetProver(prover1, matured)
	require.NoError(t, err)
	assert.Equal(t, "retired", info.State)
	assert.Zero(t, info.StakerCount)

	assert.ErrorIs(t, l.Stake(stakerB, prover1, bi(100), matured), ErrInvalidState)

	// a retired prover may start a fresh epoch
	require.NoError(t, l.Register(prover1, bi(2000), 100, bi(1000), matured))
	info, err = l.GetProver(prover1, matured)
	require.NoError(t, err)
	assert.Equal(t, "active", info.State)
	assert.Zero(t, info.Scale.Cmp(provex.InitialScale()))
	assert.Equal(t, int64(2000), info.EffectiveStake.Int64())
}

func TestStakersEnumeration(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(100), t0))
	require.NoError(t, l.Stake(stakerC, prover1, bi(100), t0))

	stakers, err := l.Stakers(prover1, 0)
	require.NoError(t, err)
	assert.Equal(t, []provex.Address{prover1, stakerB, stakerC}, stakers)

	stakers, err = l.Stakers(prover1, 2)
	require.NoError(t, err)
	assert.Equal(t, []provex.Address{prover1, stakerB}, stakers)

	// leaving entirely unlinks the record
	require.NoError(t, l.RequestUnstake(stakerB, prover1, bi(100), t0))
	_, err = l.CompleteUnstake(stakerB, prover1, t0+provex.DefaultUnstakeDelay)
	require.NoError(t, err)
	stakers, err = l.Stakers(prover1, 0)
	require.NoError(t, err)
	assert.Equal(t, []provex.Address{prover1, stakerC}, stakers)
}

func TestStakeAfterSlashMintsMoreShares(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.GrantSlasher(owner, market))
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(100), t0))

	_, err := l.SlashByPercentage(market, prover1, 500_000, t0)
	require.NoError(t, err)

	// at half scale, 500 buys 1000 raw shares and is not diluted
	require.NoError(t, l.Stake(stakerB, prover1, bi(500), t0))
	stake, err := l.GetStake(prover1, stakerB, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stake.RawShares.Int64())
	assert.Equal(t, int64(500), stake.EffectiveStake.Int64())

	// rewards split half and half between prover and B
	_, _, err = l.CreditRewards(market, prover1, bi(800), t0)
	require.NoError(t, err)
	paid, err := l.WithdrawRewards(stakerB, prover1, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(400), paid.Int64())
}

func TestAdminConfig(t *testing.T) {
	l := newTestLedger(t)

	assert.ErrorIs(t, l.SetUnstakeDelay(stakerB, 3600), ErrUnauthorized)
	require.NoError(t, l.SetUnstakeDelay(owner, 3600))
	assert.Error(t, l.SetUnstakeDelay(owner, provex.MaxUnstakeDelay+1))

	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(100), t0))
	require.NoError(t, l.RequestUnstake(stakerB, prover1, bi(100), t0))
	paid, err := l.CompleteUnstake(stakerB, prover1, t0+3600)
	require.NoError(t, err)
	assert.Equal(t, int64(100), paid.Int64())

	assert.ErrorIs(t, l.SetSlashFloors(stakerB, 1, 2), ErrUnauthorized)
	require.NoError(t, l.SetSlashFloors(owner, 100_000, 200_000))
	require.NoError(t, l.SetMaxSlashPpm(owner, 400_000))
	require.NoError(t, l.GrantSlasher(owner, market))
	_, err = l.SlashByPercentage(market, prover1, 400_001, t0+3600)
	assert.ErrorIs(t, err, ErrSlashTooHigh)
}

func TestSetCommissionRateForward(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Register(prover1, bi(1000), 0, bi(1000), t0))
	require.NoError(t, l.Stake(stakerB, prover1, bi(1000), t0))

	_, _, err := l.CreditRewards(market, prover1, bi(1000), t0)
	require.NoError(t, err)

	require.NoError(t, l.SetCommissionRate(prover1, 5000, t0))
	assert.ErrorIs(t, l.SetCommissionRate(prover1, 10001, t0), ErrInvalidCommissionRate)

	// the earlier credit keeps the 0% split
	paid, err := l.WithdrawRewards(stakerB, prover1, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(500), paid.Int64())

	// new credits use the new rate
	commission, _, err := l.CreditRewards(market, prover1, bi(1000), t0)
	require.NoError(t, err)
	assert.Equal(t, int64(500), commission.Int64())
}
