// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledgerapi exposes the staking ledger over JSON/HTTP. Request bodies
// carry the caller address explicitly; authenticating callers is the
// deployment's concern, not this package's.
package ledgerapi

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/provex/provex/api/restutil"
	"github.com/provex/provex/ledger"
	"github.com/provex/provex/provex"
	"github.com/provex/provex/vault"
)

// LedgerAPI routes ledger operations and views.
type LedgerAPI struct {
	ledger *ledger.Ledger
	now    func() uint64
}

// New creates the API around a ledger.
func New(l *ledger.Ledger) *LedgerAPI {
	return &LedgerAPI{
		ledger: l,
		now:    func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// Mount attaches all routes to root under pathPrefix.
func (a *LedgerAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/provers").
		Methods(http.MethodPost).
		Name("ledger_register").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleRegister))
	sub.Path("/provers/{address}").
		Methods(http.MethodGet).
		Name("ledger_get_prover").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetProver))
	sub.Path("/provers/{address}/stakes").
		Methods(http.MethodPost).
		Name("ledger_stake").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleStake))
	sub.Path("/provers/{address}/stakes/{staker}").
		Methods(http.MethodGet).
		Name("ledger_get_stake").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetStake))
	sub.Path("/provers/{address}/stakes/{staker}/unstakes").
		Methods(http.MethodGet).
		Name("ledger_pending_unstakes").
		HandlerFunc(restutil.WrapHandlerFunc(a.handlePendingUnstakes))
	sub.Path("/provers/{address}/unstake-requests").
		Methods(http.MethodPost).
		Name("ledger_request_unstake").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleRequestUnstake))
	sub.Path("/provers/{address}/unstake-completions").
		Methods(http.MethodPost).
		Name("ledger_complete_unstake").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleCompleteUnstake))
	sub.Path("/provers/{address}/reward-withdrawals").
		Methods(http.MethodPost).
		Name("ledger_withdraw_rewards").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleWithdrawRewards))
	sub.Path("/provers/{address}/rewards").
		Methods(http.MethodPost).
		Name("ledger_credit_rewards").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleCreditRewards))
	sub.Path("/provers/{address}/slashes").
		Methods(http.MethodPost).
		Name("ledger_slash").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSlash))
	sub.Path("/provers/{address}/deactivation").
		Methods(http.MethodPost).
		Name("ledger_deactivate").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleDeactivate))
	sub.Path("/provers/{address}/reactivation").
		Methods(http.MethodPost).
		Name("ledger_reactivate").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleReactivate))
	sub.Path("/provers/{address}/commission-rate").
		Methods(http.MethodPut).
		Name("ledger_set_commission").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetCommission))
	sub.Path("/provers/{address}/min-self-stake").
		Methods(http.MethodPut).
		Name("ledger_update_min_self_stake").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleUpdateMinSelfStake))
	sub.Path("/provers/{address}/stakers").
		Methods(http.MethodGet).
		Name("ledger_stakers").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleStakers))
	sub.Path("/provers/{address}/eligibility").
		Methods(http.MethodGet).
		Name("ledger_eligibility").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleEligibility))

	sub.Path("/emission/updates").
		Methods(http.MethodPost).
		Name("ledger_update_emission").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleUpdateEmission))
	sub.Path("/emission/funding").
		Methods(http.MethodPost).
		Name("ledger_fund_emission").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleFundEmission))
	sub.Path("/emission/rate").
		Methods(http.MethodPut).
		Name("ledger_set_emission_rate").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetEmissionRate))

	sub.Path("/params/unstake-delay").
		Methods(http.MethodPut).
		Name("ledger_set_unstake_delay").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetUnstakeDelay))
	sub.Path("/params/global-min-self-stake").
		Methods(http.MethodPut).
		Name("ledger_set_global_min").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetGlobalMin))
	sub.Path("/params/slash-floors").
		Methods(http.MethodPut).
		Name("ledger_set_slash_floors").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetSlashFloors))
	sub.Path("/params/max-slash").
		Methods(http.MethodPut).
		Name("ledger_set_max_slash").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetMaxSlash))
	sub.Path("/params/slashers").
		Methods(http.MethodPost).
		Name("ledger_grant_slasher").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGrantSlasher))
	sub.Path("/params/slashers").
		Methods(http.MethodDelete).
		Name("ledger_revoke_slasher").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleRevokeSlasher))

	sub.Path("/stats").
		Methods(http.MethodGet).
		Name("ledger_stats").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleStats))
	sub.Path("/accounts/{address}/balance").
		Methods(http.MethodGet).
		Name("ledger_balance").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleBalance))
}

// convertError maps ledger sentinels onto HTTP statuses.
func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrUnauthorized):
		return restutil.Forbidden(err)
	case errors.Is(err, ledger.ErrInvalidState):
		return restutil.Conflict(err)
	case errors.Is(err, ledger.ErrZeroAmount),
		errors.Is(err, ledger.ErrInsufficientStake),
		errors.Is(err, ledger.ErrBelowMinSelfStake),
		errors.Is(err, ledger.ErrTooManyPendingUnstakes),
		errors.Is(err, ledger.ErrUnstakeNotReady),
		errors.Is(err, ledger.ErrNoUnstakeRequest),
		errors.Is(err, ledger.ErrSlashTooHigh),
		errors.Is(err, ledger.ErrInvalidCommissionRate),
		errors.Is(err, ledger.ErrNoRewardsAvailable),
		errors.Is(err, vault.ErrInsufficientBalance):
		return restutil.BadRequest(err)
	default:
		return err
	}
}

func pathAddress(r *http.Request, name string) (provex.Address, error) {
	addr, err := provex.ParseAddress(mux.Vars(r)[name])
	if err != nil {
		return provex.Address{}, restutil.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func (a *LedgerAPI) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req RegisterRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	selfStake, err := amount(req.SelfStake)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "selfStake"))
	}
	minSelf, err := amount(req.MinSelfStake)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "minSelfStake"))
	}
	if err := a.ledger.Register(req.Prover, selfStake, req.CommissionRateBps, minSelf, a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (a *LedgerAPI) handleGetProver(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	info, err := a.ledger.GetProver(addr, a.now())
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidState) {
			return restutil.NotFound(err)
		}
		return err
	}
	return restutil.WriteJSON(w, info)
}

func (a *LedgerAPI) handleStake(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req StakeRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := amount(req.Amount)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "amount"))
	}
	if err := a.ledger.Stake(req.Staker, addr, value, a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleGetStake(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	staker, err := pathAddress(r, "staker")
	if err != nil {
		return err
	}
	info, err := a.ledger.GetStake(addr, staker, a.now())
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, info)
}

func (a *LedgerAPI) handlePendingUnstakes(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	staker, err := pathAddress(r, "staker")
	if err != nil {
		return err
	}
	infos, err := a.ledger.PendingUnstakes(addr, staker, a.now())
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, infos)
}

func (a *LedgerAPI) handleRequestUnstake(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req UnstakeRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := amount(req.Amount)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "amount"))
	}
	if err := a.ledger.RequestUnstake(req.Staker, addr, value, a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusAccepted)
	return nil
}

func (a *LedgerAPI) handleCompleteUnstake(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req CompleteUnstakeRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	paid, err := a.ledger.CompleteUnstake(req.Staker, addr, a.now())
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, &PaidResponse{Paid: hexOrDec(paid)})
}

func (a *LedgerAPI) handleWithdrawRewards(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req WithdrawRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	paid, err := a.ledger.WithdrawRewards(req.Caller, addr, a.now())
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, &PaidResponse{Paid: hexOrDec(paid)})
}

func (a *LedgerAPI) handleCreditRewards(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req CreditRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := amount(req.Amount)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "amount"))
	}
	commission, stakersPortion, err := a.ledger.CreditRewards(req.Caller, addr, value, a.now())
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, &CreditResponse{
		Commission:     hexOrDec(commission),
		StakersPortion: hexOrDec(stakersPortion),
	})
}

func (a *LedgerAPI) handleSlash(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req SlashRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	var slashed *big.Int
	switch {
	case req.Ppm > 0 && req.Amount == nil:
		slashed, err = a.ledger.SlashByPercentage(req.Slasher, addr, req.Ppm, a.now())
	case req.Ppm == 0 && req.Amount != nil:
		var value *big.Int
		if value, err = amount(req.Amount); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "amount"))
		}
		slashed, err = a.ledger.SlashByAmount(req.Slasher, addr, value, a.now())
	default:
		return restutil.BadRequest(errors.New("exactly one of ppm and amount must be set"))
	}
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, &SlashResponse{Slashed: hexOrDec(slashed)})
}

func (a *LedgerAPI) handleDeactivate(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req CallerRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.ledger.Deactivate(req.Caller, addr, a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleReactivate(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req CallerRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.ledger.Reactivate(req.Caller, addr, a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleSetCommission(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req CommissionRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.ledger.SetCommissionRate(addr, req.Bps, a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleUpdateMinSelfStake(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var req MinSelfStakeRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	target, err := amount(req.Target)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "target"))
	}
	if err := a.ledger.UpdateMinSelfStake(addr, target, a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleStakers(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	var limit uint64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "limit"))
		}
	}
	stakers, err := a.ledger.Stakers(addr, limit)
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, stakers)
}

func (a *LedgerAPI) handleEligibility(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	minimum := new(big.Int)
	if raw := r.URL.Query().Get("min"); raw != "" {
		var ok bool
		if minimum, ok = new(big.Int).SetString(raw, 10); !ok {
			return restutil.BadRequest(errors.New("min: malformed amount"))
		}
	}
	eligible, eff, err := a.ledger.IsEligible(addr, minimum)
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, &EligibilityResponse{
		Eligible:       eligible,
		EffectiveStake: hexOrDec(eff),
	})
}

func (a *LedgerAPI) handleUpdateEmission(w http.ResponseWriter, _ *http.Request) error {
	if err := a.ledger.UpdateEmission(a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleFundEmission(w http.ResponseWriter, r *http.Request) error {
	var req FundRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := amount(req.Amount)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "amount"))
	}
	if err := a.ledger.FundEmission(req.From, value, a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleSetEmissionRate(w http.ResponseWriter, r *http.Request) error {
	var req RateRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	rate, err := amount(req.Rate)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "rate"))
	}
	if err := a.ledger.SetEmissionRate(req.Caller, rate, a.now()); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleSetUnstakeDelay(w http.ResponseWriter, r *http.Request) error {
	var req DelayRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.ledger.SetUnstakeDelay(req.Caller, req.Seconds); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleSetGlobalMin(w http.ResponseWriter, r *http.Request) error {
	var req GlobalMinRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := amount(req.Value)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "value"))
	}
	if err := a.ledger.SetGlobalMinSelfStake(req.Caller, value); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleSetSlashFloors(w http.ResponseWriter, r *http.Request) error {
	var req FloorsRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.ledger.SetSlashFloors(req.Caller, req.HardPpm, req.SoftPpm); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleSetMaxSlash(w http.ResponseWriter, r *http.Request) error {
	var req MaxSlashRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.ledger.SetMaxSlashPpm(req.Caller, req.Ppm); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleGrantSlasher(w http.ResponseWriter, r *http.Request) error {
	var req SlasherRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.ledger.GrantSlasher(req.Caller, req.Address); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleRevokeSlasher(w http.ResponseWriter, r *http.Request) error {
	var req SlasherRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.ledger.RevokeSlasher(req.Caller, req.Address); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *LedgerAPI) handleStats(w http.ResponseWriter, _ *http.Request) error {
	stats, err := a.ledger.Stats(a.now())
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, stats)
}

func (a *LedgerAPI) handleBalance(w http.ResponseWriter, r *http.Request) error {
	addr, err := pathAddress(r, "address")
	if err != nil {
		return err
	}
	balance, err := a.ledger.Balance(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &BalanceResponse{Balance: hexOrDec(balance)})
}
