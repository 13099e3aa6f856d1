package engine

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"circlepot/cycle"
	"circlepot/escrow"
	"circlepot/storage"
	"circlepot/util"
)

// CreateCycle validates the parameters, locks the organizer's 20% stake in
// the cycle's escrow account, and records the new cycle plus the updated
// organizer ledger in one transaction.
func (e *Engine) CreateCycle(organizer string, nonce uint64, params cycle.Params) (*cycle.Cycle, error) {

	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Organizer ledger; first cycle creates the record
	org, err := e.storage.GetOrganizer(organizer)
	if err != nil {
		if errors.Cause(err) != storage.ErrNotFound {
			return nil, errors.Wrap(err, "Unable to load organizer record")
		}
		org = &cycle.OrganizerAccount{Organizer: organizer}
	}

	if org.TotalCycles >= cycle.MaxOrganizerCycles {
		return nil, cycle.ErrTooManyCycles
	}

	if _, err := e.storage.GetCycle(organizer, nonce); err == nil {
		return nil, cycle.ErrCycleExists
	}

	pot, err := cycle.ComputePot(&params)
	if err != nil {
		return nil, err
	}

	requiredStake, err := cycle.RequiredOrganizerStake(pot)
	if err != nil {
		return nil, err
	}

	balance, err := e.escrow.Balance(organizer)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to read organizer balance")
	}
	if balance < requiredStake {
		return nil, cycle.ErrInsufficientStake
	}

	authority, err := escrow.NewCycleAuthority(organizer, nonce)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()

	// Ledger mutations are computed before anything moves
	totalCycles, err := util.CheckedAdd(org.TotalCycles, 1)
	if err != nil {
		return nil, err
	}

	lockedStake, err := util.CheckedAdd(org.LockedStake, requiredStake)
	if err != nil {
		return nil, err
	}

	nextRoundTime, err := util.CheckedAddInt64(now, params.ContributionInterval)
	if err != nil {
		return nil, err
	}

	// Lock the organizer stake into the cycle escrow
	if err := e.escrow.Transfer(organizer, authority.Account, nil, requiredStake); err != nil {
		return nil, errors.Wrap(err, "Unable to transfer organizer stake")
	}

	org.TotalCycles = totalCycles
	org.LockedStake = lockedStake
	org.LastCycleTime = now

	c := &cycle.Cycle{
		Organizer:       organizer,
		Nonce:           nonce,
		Params:          params,
		CreatedAt:       now,
		EscrowAuthority: authority,
		IsActive:        false,
		CurrentRound:    0,
		NextRoundTime:   nextRoundTime,
		OrganizerStake:  requiredStake,
		PotAmount:       pot,
		SlashedStakes:   0,
	}

	if err := e.storage.SaveCycleCreation(c, org); err != nil {
		// Records did not commit; send the stake back
		if rerr := e.escrow.Transfer(authority.Account, organizer, &authority, requiredStake); rerr != nil {
			log.WithError(rerr).WithFields(log.Fields{
				"Organizer": organizer, "Nonce": nonce, "Stake": requiredStake,
			}).Error("Unable to refund stake after failed save")
		}
		return nil, errors.Wrap(err, "Unable to save new cycle")
	}

	log.WithFields(log.Fields{
		"Organizer": organizer, "Nonce": nonce,
		"Pot": pot, "Stake": requiredStake, "Rounds": params.RoundCount,
	}).Info("Cycle created")

	return c, nil
}
