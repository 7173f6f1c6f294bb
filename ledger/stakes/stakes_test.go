// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provex/provex/ledger/storage"
	"github.com/provex/provex/lvldb"
	"github.com/provex/provex/provex"
)

func TestShareMath(t *testing.T) {
	scale := provex.InitialScale()

	// at full scale, shares mint one to one
	assert.Equal(t, int64(1000), MintShares(big.NewInt(1000), scale).Int64())
	assert.Equal(t, int64(1000), EffectiveAmount(big.NewInt(1000), scale).Int64())

	// at half scale, the same amount mints twice the shares
	half := new(big.Int).Quo(provex.ScaleUnit(), big.NewInt(2))
	assert.Equal(t, int64(2000), MintShares(big.NewInt(1000), half).Int64())
	assert.Equal(t, int64(1000), EffectiveAmount(big.NewInt(2000), half).Int64())
}

func TestSettle(t *testing.T) {
	rec := NewRecord()
	rec.RawShares = big.NewInt(1000)

	// acc moves by 0.5 units per raw share
	acc := new(big.Int).Quo(provex.ScaleUnit(), big.NewInt(2))
	rec.Settle(acc, new(big.Int))
	assert.Equal(t, int64(500), rec.PendingRewards.Int64())
	assert.Equal(t, int64(500), rec.RewardDebt.Int64())

	// settling again without accumulator movement yields nothing
	rec.Settle(acc, new(big.Int))
	assert.Equal(t, int64(500), rec.PendingRewards.Int64())

	// the emission accumulator settles independently
	rec.Settle(acc, acc)
	assert.Equal(t, int64(1000), rec.PendingRewards.Int64())
	assert.Equal(t, int64(500), rec.RewardDebtEmission.Int64())
}

func TestResetDebts(t *testing.T) {
	rec := NewRecord()
	rec.RawShares = big.NewInt(600)

	acc := provex.ScaleUnit()
	rec.ResetDebts(acc, acc)
	assert.Equal(t, int64(600), rec.RewardDebt.Int64())
	assert.Equal(t, int64(600), rec.RewardDebtEmission.Int64())

	// a baselined record accrues nothing retroactively
	rec.Settle(acc, acc)
	assert.Zero(t, rec.PendingRewards.Sign())
}

func TestQueueUnstake(t *testing.T) {
	rec := NewRecord()
	scale := provex.InitialScale()

	for i := 0; i < provex.MaxPendingUnstakes; i++ {
		require.True(t, rec.QueueUnstake(big.NewInt(int64(i+1)), uint64(i), scale))
	}
	assert.False(t, rec.QueueUnstake(big.NewInt(11), 11, scale))
	assert.Len(t, rec.PendingUnstakes, provex.MaxPendingUnstakes)
}

func TestTakeEligibleUnstakes(t *testing.T) {
	rec := NewRecord()
	scale := provex.InitialScale()
	rec.QueueUnstake(big.NewInt(1), 100, scale)
	rec.QueueUnstake(big.NewInt(2), 200, scale)
	rec.QueueUnstake(big.NewInt(3), 300, scale)

	assert.Nil(t, rec.TakeEligibleUnstakes(100, 50))

	taken := rec.TakeEligibleUnstakes(260, 50)
	require.Len(t, taken, 2)
	assert.Equal(t, int64(1), taken[0].RawShares.Int64())
	assert.Equal(t, int64(2), taken[1].RawShares.Int64())
	assert.Len(t, rec.PendingUnstakes, 1)

	taken = rec.TakeEligibleUnstakes(1000, 50)
	require.Len(t, taken, 1)
	assert.Empty(t, rec.PendingUnstakes)
}

func TestServiceRoundtrip(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	proverAddr := provex.BytesToAddress([]byte("prover"))
	stakerAddr := provex.BytesToAddress([]byte("staker"))

	sctx := storage.NewContext(db)
	svc := New(sctx)

	rec, err := svc.Get(proverAddr, stakerAddr)
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())

	rec.RawShares = big.NewInt(1234)
	rec.PendingRewards = big.NewInt(55)
	rec.QueueUnstake(big.NewInt(7), 42, provex.InitialScale())
	next := provex.BytesToAddress([]byte("next"))
	rec.Next = &next
	require.NoError(t, svc.Set(proverAddr, stakerAddr, rec))
	require.NoError(t, sctx.CommitTo(db))

	loaded, err := New(storage.NewContext(db)).Get(proverAddr, stakerAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), loaded.RawShares.Int64())
	assert.Equal(t, int64(55), loaded.PendingRewards.Int64())
	require.Len(t, loaded.PendingUnstakes, 1)
	assert.Equal(t, uint64(42), loaded.PendingUnstakes[0].RequestTime)
	require.NotNil(t, loaded.Next)
	assert.Equal(t, next, *loaded.Next)
	assert.Nil(t, loaded.Prev)
}
