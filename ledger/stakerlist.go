// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/provex/provex/ledger/prover"
	"github.com/provex/provex/ledger/stakes"
	"github.com/provex/provex/provex"
)

// The staker enumeration list is a doubly linked list threaded through the
// stake records, with head/tail in the prover account. It exists for the
// Stakers view only; no accounting path ever walks it.

// listAppend links rec at the tail of proverAddr's staker list.
func listAppend(svc *services, proverAddr provex.Address, acct *prover.Account, stakerAddr provex.Address, rec *stakes.Record) error {
	rec.Prev, rec.Next = nil, nil
	if acct.StakersTail == nil {
		head := stakerAddr
		acct.StakersHead, acct.StakersTail = &head, &head
		acct.StakerCount++
		return nil
	}
	tailAddr := *acct.StakersTail
	tail, err := svc.stakes.Get(proverAddr, tailAddr)
	if err != nil {
		return err
	}
	tail.Next = &stakerAddr
	if err := svc.stakes.Set(proverAddr, tailAddr, tail); err != nil {
		return errors.Wrap(err, "failed to relink staker list tail")
	}
	rec.Prev = &tailAddr
	acct.StakersTail = &stakerAddr
	acct.StakerCount++
	return nil
}

// listRemove unlinks rec from proverAddr's staker list.
func listRemove(svc *services, proverAddr provex.Address, acct *prover.Account, stakerAddr provex.Address, rec *stakes.Record) error {
	if rec.Prev == nil {
		acct.StakersHead = rec.Next
	} else {
		prevAddr := *rec.Prev
		prev, err := svc.stakes.Get(proverAddr, prevAddr)
		if err != nil {
			return err
		}
		prev.Next = rec.Next
		if err := svc.stakes.Set(proverAddr, prevAddr, prev); err != nil {
			return errors.Wrap(err, "failed to relink staker list")
		}
	}
	if rec.Next == nil {
		acct.StakersTail = rec.Prev
	} else {
		nextAddr := *rec.Next
		next, err := svc.stakes.Get(proverAddr, nextAddr)
		if err != nil {
			return err
		}
		next.Prev = rec.Prev
		if err := svc.stakes.Set(proverAddr, nextAddr, next); err != nil {
			return errors.Wrap(err, "failed to relink staker list")
		}
	}
	rec.Prev, rec.Next = nil, nil
	if acct.StakerCount > 0 {
		acct.StakerCount--
	}
	return nil
}
