package webserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"circlepot/cycle"
	"circlepot/escrow"
	"circlepot/storage"
	"circlepot/util"
)

type ApiError struct {
	Error string `json:"error"`
}

func apiReturnOk(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func apiReturnJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("UI Return Failure")
	}
}

// apiError maps the engine's sentinel errors onto HTTP statuses: missing
// records 404, malformed input 400, precondition failures 409.
func apiError(err error, w http.ResponseWriter) {

	status := http.StatusInternalServerError

	switch errors.Cause(err) {
	case storage.ErrNotFound:
		status = http.StatusNotFound
	case cycle.ErrInvalidParams, cycle.ErrInvalidPayoutOrder,
		util.ErrOverflow, util.ErrUnderflow:
		status = http.StatusBadRequest
	case escrow.ErrUnauthorized:
		status = http.StatusForbidden
	case cycle.ErrTooManyCycles, cycle.ErrInsufficientStake, cycle.ErrCycleExists,
		cycle.ErrCycleFull, cycle.ErrCycleNotActive, cycle.ErrCycleActive,
		cycle.ErrCycleStillActive, cycle.ErrCycleComplete, cycle.ErrNotInPayoutOrder,
		cycle.ErrAlreadyJoined, cycle.ErrAlreadyContributed, cycle.ErrRoundWindowClosed,
		cycle.ErrPayoutTooEarly, cycle.ErrInvalidPayoutRecipient, cycle.ErrTooEarlyToReport,
		cycle.ErrMemberNotActive, cycle.ErrMemberStillActive, cycle.ErrInvalidCycle,
		cycle.ErrMembersRemain, escrow.ErrInsufficientFunds:
		status = http.StatusConflict
	}

	e, _ := json.Marshal(ApiError{err.Error()})
	http.Error(w, string(e), status)
}

func (ws *WebServer) health(w http.ResponseWriter, r *http.Request) {
	apiReturnOk(w)
}

// cycleVars pulls the (organizer, nonce) cycle key out of the request path.
func cycleVars(r *http.Request) (string, uint64, error) {

	vars := mux.Vars(r)

	nonce, err := strconv.ParseUint(vars["nonce"], 10, 64)
	if err != nil {
		return "", 0, errors.Wrap(err, "Unable to parse cycle nonce")
	}

	return vars["org"], nonce, nil
}

type createCycleRequest struct {
	Organizer string       `json:"organizer"`
	Nonce     uint64       `json:"nonce"`
	Params    cycle.Params `json:"params"`
}

func (ws *WebServer) createCycle(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - createCycle")

	// CORS crap; Handle OPTION preflight check
	if r.Method == http.MethodOptions {
		return
	}

	var req createCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(errors.Wrap(err, "Cannot decode body for createCycle"), w)
		return
	}

	c, err := ws.engine.CreateCycle(req.Organizer, req.Nonce, req.Params)
	if err != nil {
		log.WithError(err).Error("API createCycle")
		apiError(err, w)
		return
	}

	apiReturnJSON(w, c)
}

func (ws *WebServer) getCycle(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getCycle")

	org, nonce, err := cycleVars(r)
	if err != nil {
		apiError(err, w)
		return
	}

	c, err := ws.storage.GetCycle(org, nonce)
	if err != nil {
		apiError(err, w)
		return
	}

	memberships, err := ws.storage.ListMemberships(org, nonce)
	if err != nil {
		apiError(err, w)
		return
	}

	apiReturnJSON(w, map[string]interface{}{
		"cycle":       c,
		"memberships": memberships,
	})
}

func (ws *WebServer) getOrganizer(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getOrganizer")

	org, err := ws.storage.GetOrganizer(mux.Vars(r)["org"])
	if err != nil {
		apiError(err, w)
		return
	}

	apiReturnJSON(w, org)
}

// memberRequest is the body of every member-scoped cycle operation.
type memberRequest struct {
	Member string `json:"member"`
}

func decodeMemberRequest(r *http.Request) (string, error) {

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", errors.Wrap(err, "Cannot decode member body")
	}

	if req.Member == "" {
		return "", errors.New("missing member parameter")
	}

	return req.Member, nil
}

func (ws *WebServer) joinCycle(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - joinCycle")

	if r.Method == http.MethodOptions {
		return
	}

	org, nonce, err := cycleVars(r)
	if err != nil {
		apiError(err, w)
		return
	}

	member, err := decodeMemberRequest(r)
	if err != nil {
		apiError(err, w)
		return
	}

	m, err := ws.engine.JoinCycle(org, nonce, member)
	if err != nil {
		log.WithError(err).Error("API joinCycle")
		apiError(err, w)
		return
	}

	apiReturnJSON(w, m)
}

func (ws *WebServer) submitContribution(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - submitContribution")

	if r.Method == http.MethodOptions {
		return
	}

	org, nonce, err := cycleVars(r)
	if err != nil {
		apiError(err, w)
		return
	}

	member, err := decodeMemberRequest(r)
	if err != nil {
		apiError(err, w)
		return
	}

	m, err := ws.engine.SubmitContribution(org, nonce, member)
	if err != nil {
		log.WithError(err).Error("API submitContribution")
		apiError(err, w)
		return
	}

	apiReturnJSON(w, m)
}

type payoutRequest struct {
	Recipient string `json:"recipient"`
}

func (ws *WebServer) triggerPayout(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - triggerPayout")

	if r.Method == http.MethodOptions {
		return
	}

	org, nonce, err := cycleVars(r)
	if err != nil {
		apiError(err, w)
		return
	}

	var req payoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(errors.Wrap(err, "Cannot decode body for triggerPayout"), w)
		return
	}

	c, err := ws.engine.TriggerPayout(org, nonce, req.Recipient)
	if err != nil {
		log.WithError(err).Error("API triggerPayout")
		apiError(err, w)
		return
	}

	apiReturnJSON(w, c)
}

func (ws *WebServer) reportDefault(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - reportDefault")

	if r.Method == http.MethodOptions {
		return
	}

	org, nonce, err := cycleVars(r)
	if err != nil {
		apiError(err, w)
		return
	}

	member, err := decodeMemberRequest(r)
	if err != nil {
		apiError(err, w)
		return
	}

	m, err := ws.engine.ReportDefault(org, nonce, member)
	if err != nil {
		log.WithError(err).Error("API reportDefault")
		apiError(err, w)
		return
	}

	apiReturnJSON(w, m)
}

func (ws *WebServer) claimCollateral(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - claimCollateral")

	if r.Method == http.MethodOptions {
		return
	}

	org, nonce, err := cycleVars(r)
	if err != nil {
		apiError(err, w)
		return
	}

	member, err := decodeMemberRequest(r)
	if err != nil {
		apiError(err, w)
		return
	}

	if err := ws.engine.ClaimCollateral(org, nonce, member); err != nil {
		log.WithError(err).Error("API claimCollateral")
		apiError(err, w)
		return
	}

	apiReturnOk(w)
}

func (ws *WebServer) exitCycle(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - exitCycle")

	if r.Method == http.MethodOptions {
		return
	}

	org, nonce, err := cycleVars(r)
	if err != nil {
		apiError(err, w)
		return
	}

	member, err := decodeMemberRequest(r)
	if err != nil {
		apiError(err, w)
		return
	}

	if err := ws.engine.ExitCycle(org, nonce, member); err != nil {
		log.WithError(err).Error("API exitCycle")
		apiError(err, w)
		return
	}

	apiReturnOk(w)
}

func (ws *WebServer) closeCycle(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - closeCycle")

	if r.Method == http.MethodOptions {
		return
	}

	org, nonce, err := cycleVars(r)
	if err != nil {
		apiError(err, w)
		return
	}

	if err := ws.engine.CloseCycle(org, nonce); err != nil {
		log.WithError(err).Error("API closeCycle")
		apiError(err, w)
		return
	}

	apiReturnOk(w)
}

type faucetRequest struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

// faucet mints dev funds into the in-process escrow ledger. Only routed
// when the memory ledger is in use.
func (ws *WebServer) faucet(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - faucet")

	if r.Method == http.MethodOptions {
		return
	}

	var req faucetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(errors.Wrap(err, "Cannot decode body for faucet"), w)
		return
	}

	if err := ws.ledger.Mint(req.Account, req.Amount); err != nil {
		apiError(err, w)
		return
	}

	apiReturnOk(w)
}
