// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package provex

import (
	"hash"

	"golang.org/x/crypto/blake2b"
)

// NewBlake2b returns a blake2b-256 hash.
func NewBlake2b() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

// Blake2b computes the blake2b-256 checksum for the given data.
func Blake2b(data ...[]byte) Bytes32 {
	h := NewBlake2b()
	for _, d := range data {
		h.Write(d)
	}
	var b32 Bytes32
	h.Sum(b32[:0])
	return b32
}
