package engine

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"circlepot/cycle"
	"circlepot/storage"
)

// JoinCycle admits a member listed in the payout order, locking their 10%
// collateral in the cycle escrow. The cycle activates when the roster fills.
func (e *Engine) JoinCycle(organizer string, nonce uint64, member string) (*cycle.Membership, error) {

	c, err := e.loadCycle(organizer, nonce)
	if err != nil {
		return nil, err
	}

	if c.CurrentParticipants >= c.MaxParticipants {
		return nil, cycle.ErrCycleFull
	}

	if c.Complete() && c.CurrentRound > 0 {
		return nil, cycle.ErrCycleComplete
	}

	if !c.InPayoutOrder(member) {
		return nil, cycle.ErrNotInPayoutOrder
	}

	// Joining twice with the same identity must fail
	if _, err := e.storage.GetMembership(organizer, nonce, member); err == nil {
		return nil, cycle.ErrAlreadyJoined
	} else if errors.Cause(err) != storage.ErrNotFound {
		return nil, errors.Wrap(err, "Unable to check for existing membership")
	}

	requiredStake, err := cycle.RequiredMemberStake(c.PotAmount)
	if err != nil {
		return nil, err
	}

	balance, err := e.escrow.Balance(member)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to read member balance")
	}
	if balance < requiredStake {
		return nil, cycle.ErrInsufficientStake
	}

	// Lock the member collateral into the cycle escrow
	if err := e.escrow.Transfer(member, c.EscrowAuthority.Account, nil, requiredStake); err != nil {
		return nil, errors.Wrap(err, "Unable to transfer member collateral")
	}

	c.CurrentParticipants++

	// Activate cycle if full
	if c.CurrentParticipants == c.MaxParticipants {
		c.IsActive = true
	}

	m := &cycle.Membership{
		Organizer:         organizer,
		Nonce:             nonce,
		Member:            member,
		ContributionsMade: 0,
		PayoutReceived:    false,
		Collateral:        requiredStake,
		IsActive:          true,
	}

	if err := e.storage.SaveCycleAndMembership(c, m); err != nil {
		// Records did not commit; send the collateral back
		if rerr := e.escrow.Transfer(c.EscrowAuthority.Account, member, &c.EscrowAuthority, requiredStake); rerr != nil {
			log.WithError(rerr).WithFields(log.Fields{
				"Organizer": organizer, "Nonce": nonce, "Member": member,
			}).Error("Unable to refund collateral after failed save")
		}
		return nil, errors.Wrap(err, "Unable to save membership")
	}

	log.WithFields(log.Fields{
		"Organizer": organizer, "Nonce": nonce, "Member": member,
		"Collateral": requiredStake, "Participants": c.CurrentParticipants,
	}).Info("Member joined cycle")

	if c.IsActive {
		e.notify("Cycle is full and now active")
	}

	return m, nil
}
