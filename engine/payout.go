package engine

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"circlepot/cycle"
	"circlepot/util"
)

// TriggerPayout advances the round counter, and on payout rounds pays the
// pot (minus the organizer fee) to the recipient due under payout_order.
//
// Recipient validation is derived purely from the round count; whether the
// recipient actually kept up with contributions is the default-reporting
// path's concern, not this one's.
func (e *Engine) TriggerPayout(organizer string, nonce uint64, recipient string) (*cycle.Cycle, error) {

	c, err := e.loadCycle(organizer, nonce)
	if err != nil {
		return nil, err
	}

	if !c.IsActive {
		// A cycle deactivated by running out its rounds reports
		// completion, not inactivity
		if c.CurrentRound > 0 && c.Complete() {
			return nil, cycle.ErrCycleComplete
		}
		return nil, cycle.ErrCycleNotActive
	}

	now := e.clock.Now()
	if !c.RoundDue(now) {
		return nil, cycle.ErrPayoutTooEarly
	}

	totalRounds, err := c.TotalRounds()
	if err != nil {
		return nil, err
	}
	if c.CurrentRound >= totalRounds {
		return nil, cycle.ErrCycleComplete
	}

	var recipientMembership *cycle.Membership

	if c.IsPayoutRound() {

		due, ok := c.DueRecipient()
		if !ok || due != recipient {
			return nil, cycle.ErrInvalidPayoutRecipient
		}

		m, err := e.loadMembership(c, recipient)
		if err != nil {
			return nil, err
		}
		if !m.IsActive {
			return nil, cycle.ErrMemberNotActive
		}

		totalPayout, organizerFee, recipientPayout, err := c.PayoutAmounts()
		if err != nil {
			return nil, err
		}

		// Both transfers leave the cycle escrow under the cycle's own
		// signing authority
		if err := e.escrow.Transfer(c.EscrowAuthority.Account, recipient, &c.EscrowAuthority, recipientPayout); err != nil {
			return nil, errors.Wrap(err, "Unable to transfer recipient payout")
		}

		if err := e.escrow.Transfer(c.EscrowAuthority.Account, organizer, &c.EscrowAuthority, organizerFee); err != nil {
			return nil, errors.Wrap(err, "Unable to transfer organizer fee")
		}

		m.PayoutReceived = true
		recipientMembership = m

		log.WithFields(log.Fields{
			"Organizer": organizer, "Nonce": nonce, "Recipient": recipient,
			"TotalPayout": totalPayout, "Fee": organizerFee, "Net": recipientPayout,
		}).Info("Pot paid out")

		e.notify(fmt.Sprintf("Pot of %d paid to %s", recipientPayout, recipient))
	}

	currentRound, err := util.CheckedAdd(c.CurrentRound, 1)
	if err != nil {
		return nil, err
	}

	nextRoundTime, err := util.CheckedAddInt64(c.NextRoundTime, c.ContributionInterval)
	if err != nil {
		return nil, err
	}

	c.CurrentRound = currentRound
	c.NextRoundTime = nextRoundTime

	// Terminal once every payout round has run
	if c.Complete() {
		c.IsActive = false

		log.WithFields(log.Fields{
			"Organizer": organizer, "Nonce": nonce, "Rounds": c.CurrentRound,
		}).Info("Cycle completed all rounds")
	}

	if recipientMembership != nil {
		err = e.storage.SaveCycleAndMembership(c, recipientMembership)
	} else {
		err = e.storage.SaveCycle(c)
	}
	if err != nil {
		return nil, errors.Wrap(err, "Unable to save cycle state")
	}

	return c, nil
}
