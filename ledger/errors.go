// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/pkg/errors"

// Sentinel errors of the ledger facade. Operations wrap these with context;
// callers match with errors.Is.
var (
	ErrInvalidState           = errors.New("invalid prover state")
	ErrInsufficientStake      = errors.New("insufficient stake")
	ErrBelowMinSelfStake      = errors.New("below minimum self-stake")
	ErrTooManyPendingUnstakes = errors.New("too many pending unstakes")
	ErrUnstakeNotReady        = errors.New("unstake not ready")
	ErrNoUnstakeRequest       = errors.New("no unstake request")
	ErrSlashTooHigh           = errors.New("slash too high")
	ErrInvalidCommissionRate  = errors.New("invalid commission rate")
	ErrNoRewardsAvailable     = errors.New("no rewards available")
	ErrZeroAmount             = errors.New("zero amount")
	ErrUnauthorized           = errors.New("unauthorized")
)
