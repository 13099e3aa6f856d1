package engine

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"circlepot/cycle"
	"circlepot/util"
)

// SubmitContribution moves one round's amount_per_user from the member into
// the cycle escrow. Payout and default logic key off contributions_made, so
// this is the record of actual per-round payment, not elapsed time: one
// contribution per elapsed round, accepted only while the round window is
// open, with catch-up allowed for rounds already missed.
func (e *Engine) SubmitContribution(organizer string, nonce uint64, member string) (*cycle.Membership, error) {

	c, err := e.loadCycle(organizer, nonce)
	if err != nil {
		return nil, err
	}

	if !c.IsActive {
		return nil, cycle.ErrCycleNotActive
	}

	m, err := e.loadMembership(c, member)
	if err != nil {
		return nil, err
	}

	if !m.IsActive {
		return nil, cycle.ErrMemberNotActive
	}

	now := e.clock.Now()
	if c.RoundDue(now) {
		return nil, cycle.ErrRoundWindowClosed
	}

	// Through round N a member owes at most N+1 contributions
	if m.ContributionsMade > c.CurrentRound {
		return nil, cycle.ErrAlreadyContributed
	}

	contributions, err := util.CheckedAdd(m.ContributionsMade, 1)
	if err != nil {
		return nil, err
	}

	if err := e.escrow.Transfer(member, c.EscrowAuthority.Account, nil, c.AmountPerUser); err != nil {
		return nil, errors.Wrap(err, "Unable to transfer contribution")
	}

	m.ContributionsMade = contributions

	if err := e.storage.SaveMembership(m); err != nil {
		// Records did not commit; send the contribution back
		if rerr := e.escrow.Transfer(c.EscrowAuthority.Account, member, &c.EscrowAuthority, c.AmountPerUser); rerr != nil {
			log.WithError(rerr).WithFields(log.Fields{
				"Organizer": organizer, "Nonce": nonce, "Member": member,
			}).Error("Unable to refund contribution after failed save")
		}
		return nil, errors.Wrap(err, "Unable to save membership")
	}

	log.WithFields(log.Fields{
		"Organizer": organizer, "Nonce": nonce, "Member": member,
		"Amount": c.AmountPerUser, "Contributions": m.ContributionsMade,
	}).Info("Contribution submitted")

	return m, nil
}
