// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides the typed persistence layer of the ledger: RLP
// encoded records addressed by blake2b-derived slots over a raw key/value
// store. Writes are buffered in a per-operation context and committed as one
// atomic batch, so a failed operation leaves no partial state behind.
package storage

import (
	"github.com/pkg/errors"

	"github.com/provex/provex/kv"
	"github.com/provex/provex/provex"
)

// Context buffers reads and writes of a single ledger operation.
// Reads observe earlier writes of the same context. Nothing reaches the
// underlying store until CommitTo.
type Context struct {
	store   kv.Getter
	overlay map[provex.Bytes32][]byte // nil value marks a pending delete
	order   []provex.Bytes32
}

// NewContext creates a context reading through to store.
func NewContext(store kv.Getter) *Context {
	return &Context{
		store:   store,
		overlay: make(map[provex.Bytes32][]byte),
	}
}

// Get returns the current value for key, or nil if it does not exist.
func (c *Context) Get(key provex.Bytes32) ([]byte, error) {
	if val, ok := c.overlay[key]; ok {
		return val, nil
	}
	val, err := c.store.Get(key.Bytes())
	if err != nil {
		if c.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "storage get")
	}
	return val, nil
}

// Put buffers a value for key.
func (c *Context) Put(key provex.Bytes32, val []byte) {
	if _, ok := c.overlay[key]; !ok {
		c.order = append(c.order, key)
	}
	c.overlay[key] = val
}

// Delete buffers removal of key.
func (c *Context) Delete(key provex.Bytes32) {
	c.Put(key, nil)
}

// Dirty reports whether the context holds uncommitted writes.
func (c *Context) Dirty() bool {
	return len(c.order) > 0
}

// CommitTo flushes all buffered writes to the putter in one batch.
func (c *Context) CommitTo(putter kv.Putter) error {
	if len(c.order) == 0 {
		return nil
	}
	batch := putter.NewBatch()
	for _, key := range c.order {
		val := c.overlay[key]
		if val == nil {
			if err := batch.Delete(key.Bytes()); err != nil {
				return errors.Wrap(err, "batch delete")
			}
			continue
		}
		if err := batch.Put(key.Bytes(), val); err != nil {
			return errors.Wrap(err, "batch put")
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit storage context")
	}
	c.overlay = make(map[provex.Bytes32][]byte)
	c.order = c.order[:0]
	return nil
}
