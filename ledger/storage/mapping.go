// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/provex/provex/provex"
)

// Key is anything that can address a mapping entry.
type Key interface {
	Bytes() []byte
}

// Mapping is a typed key/value collection rooted at a named slot, similar to
// a mapping in contract storage. Entry positions are blake2b(key, slot), so
// distinct mappings never collide.
type Mapping[K Key, V any] struct {
	context *Context
	slot    provex.Bytes32
}

// NewMapping creates a mapping rooted at slot.
func NewMapping[K Key, V any](context *Context, slot provex.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, slot: slot}
}

func (m *Mapping[K, V]) position(key K) provex.Bytes32 {
	return provex.Blake2b(key.Bytes(), m.slot.Bytes())
}

// Get decodes the entry at key, or returns nil if it does not exist.
func (m *Mapping[K, V]) Get(key K) (*V, error) {
	raw, err := m.context.Get(m.position(key))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	value := new(V)
	if err := rlp.DecodeBytes(raw, value); err != nil {
		return nil, errors.Wrap(err, "decode mapping entry")
	}
	return value, nil
}

// Set encodes and buffers the entry at key.
func (m *Mapping[K, V]) Set(key K, value *V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "encode mapping entry")
	}
	m.context.Put(m.position(key), raw)
	return nil
}

// Delete buffers removal of the entry at key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.Delete(m.position(key))
}
