package engine

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"circlepot/cycle"
	"circlepot/util"
)

// ExitCycle lets a member withdraw their remaining collateral while the
// cycle is not running: before the roster fills, or after the cycle has
// gone terminal. Leaving mid-cycle is not an exit, it is a default. The
// member leaves the payout order and the membership record is closed.
func (e *Engine) ExitCycle(organizer string, nonce uint64, member string) error {

	c, err := e.loadCycle(organizer, nonce)
	if err != nil {
		return err
	}

	if c.IsActive {
		return cycle.ErrCycleActive
	}

	m, err := e.loadMembership(c, member)
	if err != nil {
		return err
	}

	if !m.IsActive {
		return cycle.ErrMemberNotActive
	}

	if err := e.escrow.Transfer(c.EscrowAuthority.Account, member, &c.EscrowAuthority, m.Collateral); err != nil {
		return errors.Wrap(err, "Unable to refund collateral")
	}

	if !c.RemoveFromPayoutOrder(member) {
		return cycle.ErrNotInPayoutOrder
	}

	if c.CurrentParticipants == 0 {
		return util.ErrUnderflow
	}
	c.CurrentParticipants--

	refunded := m.Collateral
	m.Collateral = 0
	m.IsActive = false

	if err := e.storage.SaveCycleRemoveMembership(c, m); err != nil {
		return errors.Wrap(err, "Unable to remove membership")
	}

	log.WithFields(log.Fields{
		"Organizer": organizer, "Nonce": nonce, "Member": member,
		"Refunded": refunded,
	}).Info("Member exited cycle")

	return nil
}

// CloseCycle reclaims a finished (or never-filled) cycle: the organizer
// stake plus any undistributed slashed pool returns to the organizer, the
// organizer ledger unlocks the stake, and the cycle record is deleted.
// Every membership must have been claimed or exited first.
func (e *Engine) CloseCycle(organizer string, nonce uint64) error {

	c, err := e.loadCycle(organizer, nonce)
	if err != nil {
		return err
	}

	if c.IsActive {
		return cycle.ErrCycleStillActive
	}

	memberships, err := e.storage.ListMemberships(organizer, nonce)
	if err != nil {
		return errors.Wrap(err, "Unable to list memberships")
	}
	if len(memberships) > 0 {
		return cycle.ErrMembersRemain
	}

	org, err := e.storage.GetOrganizer(organizer)
	if err != nil {
		return errors.Wrap(err, "Unable to load organizer record")
	}

	refund, err := util.CheckedAdd(c.OrganizerStake, c.SlashedStakes)
	if err != nil {
		return err
	}

	lockedStake, err := util.CheckedSub(org.LockedStake, c.OrganizerStake)
	if err != nil {
		return err
	}

	if err := e.escrow.Transfer(c.EscrowAuthority.Account, organizer, &c.EscrowAuthority, refund); err != nil {
		return errors.Wrap(err, "Unable to refund organizer stake")
	}

	org.LockedStake = lockedStake

	if err := e.storage.DeleteCycle(c, org); err != nil {
		return errors.Wrap(err, "Unable to delete cycle")
	}

	log.WithFields(log.Fields{
		"Organizer": organizer, "Nonce": nonce,
		"Refund": refund, "SlashedPool": c.SlashedStakes,
	}).Info("Cycle closed")

	return nil
}
