// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provex/provex/lvldb"
	"github.com/provex/provex/provex"
)

func TestContextOverlay(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	slot := NameToSlot("test-slot")
	sctx := NewContext(db)

	// absent keys read as nil
	val, err := sctx.Get(slot)
	require.NoError(t, err)
	assert.Nil(t, val)
	assert.False(t, sctx.Dirty())

	// buffered writes are visible to the same context but not the store
	sctx.Put(slot, []byte("hello"))
	assert.True(t, sctx.Dirty())
	val, err = sctx.Get(slot)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), val)
	has, err := db.Has(slot.Bytes())
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, sctx.CommitTo(db))
	assert.False(t, sctx.Dirty())
	stored, err := db.Get(slot.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), stored)
}

func TestContextDelete(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	slot := NameToSlot("doomed")
	require.NoError(t, db.Put(slot.Bytes(), []byte("x")))

	sctx := NewContext(db)
	sctx.Delete(slot)
	val, err := sctx.Get(slot)
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, sctx.CommitTo(db))
	has, err := db.Has(slot.Bytes())
	require.NoError(t, err)
	assert.False(t, has)
}

type testKey provex.Address

func (k testKey) Bytes() []byte { return k[:] }

func TestMapping(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	slot := NameToSlot("balances")
	sctx := NewContext(db)
	m := NewMapping[testKey, big.Int](sctx, slot)

	key := testKey(provex.BytesToAddress([]byte("alice")))
	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, m.Set(key, big.NewInt(42)))
	got, err = m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.Int64())

	// same key under another slot does not collide
	other := NewMapping[testKey, big.Int](sctx, NameToSlot("allowances"))
	got, err = other.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)

	m.Delete(key)
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUint256(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	sctx := NewContext(db)
	u := NewUint256(sctx, NameToSlot("counter"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	require.NoError(t, u.Add(big.NewInt(100)))
	require.NoError(t, u.Sub(big.NewInt(40)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(60), v.Int64())

	assert.Error(t, u.Sub(big.NewInt(61)))
	assert.Error(t, u.Set(big.NewInt(-1)))
}

func TestUint64(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	sctx := NewContext(db)
	u := NewUint64(sctx, NameToSlot("timestamp"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, v)

	u.Set(1234567890)
	require.NoError(t, sctx.CommitTo(db))

	v, err = NewUint64(NewContext(db), NameToSlot("timestamp")).Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(1234567890), v)
}
