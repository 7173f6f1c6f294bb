// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provex/provex/ledger/storage"
	"github.com/provex/provex/lvldb"
	"github.com/provex/provex/provex"
)

func newTestService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(storage.NewContext(db))
}

func TestDefaults(t *testing.T) {
	svc := newTestService(t)

	delay, err := svc.UnstakeDelay()
	require.NoError(t, err)
	assert.Equal(t, provex.DefaultUnstakeDelay, delay)

	hard, soft, err := svc.SlashFloors()
	require.NoError(t, err)
	assert.Equal(t, provex.DefaultHardFloorPpm, hard)
	assert.Equal(t, provex.DefaultSoftThresholdPpm, soft)

	max, err := svc.MaxSlashPpm()
	require.NoError(t, err)
	assert.Equal(t, uint64(provex.PpmDenominator), max)

	minSelf, err := svc.GlobalMinSelfStake()
	require.NoError(t, err)
	assert.Zero(t, minSelf.Sign())

	owner, err := svc.Owner()
	require.NoError(t, err)
	assert.True(t, owner.IsZero())
}

func TestSetters(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.SetUnstakeDelay(3600))
	delay, err := svc.UnstakeDelay()
	require.NoError(t, err)
	assert.Equal(t, uint64(3600), delay)
	assert.Error(t, svc.SetUnstakeDelay(0))
	assert.Error(t, svc.SetUnstakeDelay(provex.MaxUnstakeDelay+1))

	require.NoError(t, svc.SetSlashFloors(100_000, 300_000))
	hard, soft, err := svc.SlashFloors()
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), hard)
	assert.Equal(t, uint64(300_000), soft)
	assert.Error(t, svc.SetSlashFloors(0, 300_000))
	assert.Error(t, svc.SetSlashFloors(400_000, 300_000))
	assert.Error(t, svc.SetSlashFloors(100_000, provex.PpmDenominator))

	require.NoError(t, svc.SetMaxSlashPpm(250_000))
	max, err := svc.MaxSlashPpm()
	require.NoError(t, err)
	assert.Equal(t, uint64(250_000), max)
	assert.Error(t, svc.SetMaxSlashPpm(0))
	assert.Error(t, svc.SetMaxSlashPpm(provex.PpmDenominator+1))

	require.NoError(t, svc.SetGlobalMinSelfStake(big.NewInt(5000)))
	minSelf, err := svc.GlobalMinSelfStake()
	require.NoError(t, err)
	assert.Equal(t, int64(5000), minSelf.Int64())
	assert.Error(t, svc.SetGlobalMinSelfStake(big.NewInt(-1)))
}

func TestSlashers(t *testing.T) {
	svc := newTestService(t)
	watcher := provex.BytesToAddress([]byte("watcher"))

	granted, err := svc.IsSlasher(watcher)
	require.NoError(t, err)
	assert.False(t, granted)

	require.NoError(t, svc.GrantSlasher(watcher))
	granted, err = svc.IsSlasher(watcher)
	require.NoError(t, err)
	assert.True(t, granted)

	svc.RevokeSlasher(watcher)
	granted, err = svc.IsSlasher(watcher)
	require.NoError(t, err)
	assert.False(t, granted)
}
