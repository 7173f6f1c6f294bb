// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provex/provex/ledger/storage"
	"github.com/provex/provex/lvldb"
	"github.com/provex/provex/provex"
)

func newTestVault(t *testing.T) *Vault {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(storage.NewContext(db))
}

func TestMint(t *testing.T) {
	v := newTestVault(t)
	alice := provex.BytesToAddress([]byte("alice"))

	balance, err := v.Balance(alice)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())

	require.NoError(t, v.Mint(alice, big.NewInt(1000)))
	balance, err = v.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance.Int64())

	supply, err := v.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), supply.Int64())

	assert.Error(t, v.Mint(alice, big.NewInt(-1)))
}

func TestTransfer(t *testing.T) {
	v := newTestVault(t)
	alice := provex.BytesToAddress([]byte("alice"))
	bob := provex.BytesToAddress([]byte("bob"))
	require.NoError(t, v.Mint(alice, big.NewInt(1000)))

	require.NoError(t, v.Transfer(alice, bob, big.NewInt(300)))
	aliceBalance, _ := v.Balance(alice)
	bobBalance, _ := v.Balance(bob)
	assert.Equal(t, int64(700), aliceBalance.Int64())
	assert.Equal(t, int64(300), bobBalance.Int64())

	err := v.Transfer(alice, bob, big.NewInt(701))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// zero and self transfers are no-ops
	require.NoError(t, v.Transfer(alice, bob, new(big.Int)))
	require.NoError(t, v.Transfer(alice, alice, big.NewInt(100)))
	aliceBalance, _ = v.Balance(alice)
	assert.Equal(t, int64(700), aliceBalance.Int64())

	supply, err := v.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), supply.Int64())
}
