// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/provex/provex/provex"
)

// NameToSlot derives a storage slot from a human-readable name.
func NameToSlot(name string) provex.Bytes32 {
	return provex.BytesToBytes32([]byte(name))
}

// Uint256 is a scalar big integer slot. Absent slots read as zero.
type Uint256 struct {
	context *Context
	slot    provex.Bytes32
}

// NewUint256 creates a scalar slot.
func NewUint256(context *Context, slot provex.Bytes32) *Uint256 {
	return &Uint256{context: context, slot: slot}
}

// Get reads the slot value, zero when unset.
func (u *Uint256) Get() (*big.Int, error) {
	raw, err := u.context.Get(u.slot)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// Set buffers the slot value. Negative values are rejected.
func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.New("uint256 slot cannot hold a negative value")
	}
	u.context.Put(u.slot, value.Bytes())
	return nil
}

// Add increases the slot value.
func (u *Uint256) Add(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(current.Add(current, value))
}

// Sub decreases the slot value. Underflow is an error, never wrapped silently.
func (u *Uint256) Sub(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	current.Sub(current, value)
	if current.Sign() < 0 {
		return errors.New("uint256 slot underflow")
	}
	return u.Set(current)
}

// Uint64 is a scalar uint64 slot. Absent slots read as zero.
type Uint64 struct {
	context *Context
	slot    provex.Bytes32
}

// NewUint64 creates a scalar slot.
func NewUint64(context *Context, slot provex.Bytes32) *Uint64 {
	return &Uint64{context: context, slot: slot}
}

// Get reads the slot value, zero when unset.
func (u *Uint64) Get() (uint64, error) {
	raw, err := u.context.Get(u.slot)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.New("malformed uint64 slot")
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Set buffers the slot value.
func (u *Uint64) Set(value uint64) {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, value)
	u.context.Put(u.slot, raw)
}
