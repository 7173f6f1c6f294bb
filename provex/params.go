// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package provex

import "math/big"

// Constants of the staking ledger protocol.
const (
	// CommissionDenominatorBps is the denominator of prover commission rates,
	// expressed in basis points.
	CommissionDenominatorBps = 10000

	// PpmDenominator is the denominator of slash percentages, expressed in
	// parts per million.
	PpmDenominator = 1_000_000

	// MaxPendingUnstakes bounds the per-staker, per-prover delayed withdrawal
	// queue.
	MaxPendingUnstakes = 10

	// DefaultUnstakeDelay is the cooldown applied between an unstake request
	// and its completion.
	DefaultUnstakeDelay = uint64(7 * 24 * 60 * 60) // 7 days

	// MaxUnstakeDelay bounds the configurable unstake delay.
	MaxUnstakeDelay = uint64(30 * 24 * 60 * 60) // 30 days

	// DefaultHardFloorPpm is the scale value below which no further slashing
	// is accepted.
	DefaultHardFloorPpm = uint64(200_000) // 20%

	// DefaultSoftThresholdPpm is the scale value below which a prover is
	// automatically deactivated.
	DefaultSoftThresholdPpm = uint64(400_000) // 40%
)

// ScaleUnit is the fixed-point unit of the per-prover scale factor and of the
// reward accumulators. A scale equal to ScaleUnit means "no slashing so far".
func ScaleUnit() *big.Int {
	return big.NewInt(1_000_000_000_000_000_000) // 1e18
}

// InitialScale returns the scale factor assigned at registration and on a
// reactivation epoch reset.
func InitialScale() *big.Int {
	return ScaleUnit()
}
