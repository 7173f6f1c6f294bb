// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/provex/provex/ledger/storage"
	"github.com/provex/provex/provex"
)

var slotRecords = storage.NameToSlot("stake-records")

// recordKey addresses a record by (prover, staker).
type recordKey struct {
	prover provex.Address
	staker provex.Address
}

func (k recordKey) Bytes() []byte {
	b := make([]byte, 0, provex.AddressLength*2)
	b = append(b, k.prover.Bytes()...)
	return append(b, k.staker.Bytes()...)
}

// Service persists stake records.
type Service struct {
	records *storage.Mapping[recordKey, Record]
}

// New creates a stakes service bound to sctx.
func New(sctx *storage.Context) *Service {
	return &Service{
		records: storage.NewMapping[recordKey, Record](sctx, slotRecords),
	}
}

// Get returns the record for (prover, staker), an empty record when none
// exists yet.
func (s *Service) Get(prover, staker provex.Address) (*Record, error) {
	record, err := s.records.Get(recordKey{prover, staker})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake record")
	}
	if record == nil {
		return NewRecord(), nil
	}
	normalize(record)
	return record, nil
}

// Set persists the record for (prover, staker).
func (s *Service) Set(prover, staker provex.Address, record *Record) error {
	if err := s.records.Set(recordKey{prover, staker}, record); err != nil {
		return errors.Wrap(err, "failed to set stake record")
	}
	return nil
}

// Delete removes the record for (prover, staker).
func (s *Service) Delete(prover, staker provex.Address) {
	s.records.Delete(recordKey{prover, staker})
}

// normalize guards against nil big fields after decoding.
func normalize(r *Record) {
	if r.RawShares == nil {
		r.RawShares = new(big.Int)
	}
	if r.RewardDebt == nil {
		r.RewardDebt = new(big.Int)
	}
	if r.RewardDebtEmission == nil {
		r.RewardDebtEmission = new(big.Int)
	}
	if r.PendingRewards == nil {
		r.PendingRewards = new(big.Int)
	}
}
