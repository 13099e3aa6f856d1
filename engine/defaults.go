package engine

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"circlepot/cycle"
	"circlepot/util"
)

// ReportDefault slashes a member who has fallen behind on contributions.
// Any caller may report once the grace period for the round has elapsed.
// A fully-slashed member is deactivated and removed from the payout order.
func (e *Engine) ReportDefault(organizer string, nonce uint64, member string) (*cycle.Membership, error) {

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
	if !c.GraceElapsed(now) {
		return nil, cycle.ErrTooEarlyToReport
	}

	missed, err := c.MissedRounds(m)
	if err != nil {
		return nil, err
	}

	penalty, err := cycle.Penalty(m, missed)
	if err != nil {
		return nil, err
	}

	collateral, err := util.CheckedSub(m.Collateral, penalty)
	if err != nil {
		return nil, err
	}

	slashed, err := util.CheckedAdd(c.SlashedStakes, penalty)
	if err != nil {
		return nil, err
	}

	m.Collateral = collateral
	c.SlashedStakes = slashed

	// Fully slashed members leave the roster
	if m.Collateral == 0 {

		m.IsActive = false

		if !c.RemoveFromPayoutOrder(member) {
			return nil, cycle.ErrNotInPayoutOrder
		}

		if c.CurrentParticipants == 0 {
			return nil, util.ErrUnderflow
		}
		c.CurrentParticipants--
	}

	if err := e.storage.SaveCycleAndMembership(c, m); err != nil {
		return nil, errors.Wrap(err, "Unable to save default state")
	}

	log.WithFields(log.Fields{
		"Organizer": organizer, "Nonce": nonce, "Member": member,
		"Missed": missed, "Penalty": penalty, "Collateral": m.Collateral,
	}).Warn("Member default reported")

	e.notify(fmt.Sprintf("Default reported for %s: %d missed rounds, %d slashed", member, missed, penalty))

	return m, nil
}

// ClaimCollateral finalizes an inactive membership: half the residual
// collateral goes to the organizer, the rest joins the slashed pool, and
// the membership record is closed. Claims stay open after the cycle goes
// terminal, otherwise a slashed membership would block CloseCycle forever.
func (e *Engine) ClaimCollateral(organizer string, nonce uint64, member string) error {

	c, err := e.loadCycle(organizer, nonce)
	if err != nil {
		return err
	}

	m, err := e.loadMembership(c, member)
	if err != nil {
		return err
	}

	if m.IsActive {
		return cycle.ErrMemberStillActive
	}

	organizerShare, redistributionShare := cycle.SplitCollateral(m.Collateral)

	slashed, err := util.CheckedAdd(c.SlashedStakes, redistributionShare)
	if err != nil {
		return err
	}

	if err := e.escrow.Transfer(c.EscrowAuthority.Account, organizer, &c.EscrowAuthority, organizerShare); err != nil {
		return errors.Wrap(err, "Unable to transfer organizer share")
	}

	c.SlashedStakes = slashed
	m.Collateral = 0

	if err := e.storage.SaveCycleRemoveMembership(c, m); err != nil {
		return errors.Wrap(err, "Unable to close membership")
	}

	log.WithFields(log.Fields{
		"Organizer": organizer, "Nonce": nonce, "Member": member,
		"OrganizerShare": organizerShare, "Redistributed": redistributionShare,
	}).Info("Collateral claimed")

	return nil
}
