// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slashing implements the scale-factor slash arithmetic. A slash is
// a single multiplication on the prover's scale; it reprices every active
// stake and every in-flight unstake request at once, with no per-staker work.
package slashing

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/provex/provex/provex"
)

// ErrTooHigh rejects a slash that is >= 100%, exceeds the configured single
// slash maximum, or arrives while the scale already sits below the hard
// floor. Rejecting instead of clamping keeps slash semantics auditable.
var ErrTooHigh = errors.New("slash too high")

// Rules carries the configured floor pair and single-slash cap, in ppm.
type Rules struct {
	HardFloorPpm     uint64 // below this scale no further slash is accepted
	SoftThresholdPpm uint64 // below this scale the prover auto-deactivates
	MaxSlashPpm      uint64 // per-call percentage cap
}

// Result describes an applied slash.
type Result struct {
	NewScale      *big.Int
	SlashedActive *big.Int // effective value removed from active shares
	Deactivate    bool     // scale crossed the soft threshold
}

// Apply computes the scale after slashing by ppm and the value removed from
// the active share population. It performs no storage access.
func Apply(scale, totalRawShares *big.Int, ppm uint64, rules Rules) (*Result, error) {
	if ppm == 0 {
		return nil, errors.New("zero slash percentage")
	}
	if ppm >= provex.PpmDenominator || ppm > rules.MaxSlashPpm {
		return nil, ErrTooHigh
	}
	if scale.Cmp(ppmOfScaleUnit(rules.HardFloorPpm)) < 0 {
		return nil, ErrTooHigh
	}

	newScale := new(big.Int).Mul(scale, new(big.Int).SetUint64(provex.PpmDenominator-ppm))
	newScale.Quo(newScale, big.NewInt(provex.PpmDenominator))

	effectiveBefore := effective(totalRawShares, scale)
	effectiveAfter := effective(totalRawShares, newScale)

	return &Result{
		NewScale:      newScale,
		SlashedActive: new(big.Int).Sub(effectiveBefore, effectiveAfter),
		Deactivate:    newScale.Cmp(ppmOfScaleUnit(rules.SoftThresholdPpm)) < 0,
	}, nil
}

// AmountToPpm converts an absolute slash amount into a percentage of the
// current active effective stake. Amounts at or above the full stake are
// rejected, mirroring the >= 100% percentage rule.
func AmountToPpm(amount, effectiveStake *big.Int) (uint64, error) {
	if effectiveStake.Sign() == 0 || amount.Cmp(effectiveStake) >= 0 {
		return 0, ErrTooHigh
	}
	ppm := new(big.Int).Mul(amount, big.NewInt(provex.PpmDenominator))
	ppm.Quo(ppm, effectiveStake)
	return ppm.Uint64(), nil
}

func ppmOfScaleUnit(ppm uint64) *big.Int {
	v := new(big.Int).Mul(provex.ScaleUnit(), new(big.Int).SetUint64(ppm))
	return v.Quo(v, big.NewInt(provex.PpmDenominator))
}

func effective(rawShares, scale *big.Int) *big.Int {
	amount := new(big.Int).Mul(rawShares, scale)
	return amount.Quo(amount, provex.ScaleUnit())
}
