package cycle

import (
	"circlepot/util"
)

func payoutTotal(amountPerUser, participants, contributionsPerPayout uint64) (uint64, error) {

	total, err := util.CheckedMul(amountPerUser, participants)
	if err != nil {
		return 0, err
	}

	return util.CheckedMul(total, contributionsPerPayout)
}

func feeOf(total, feeBps uint64) (uint64, error) {

	fee, err := util.CheckedMul(total, feeBps)
	if err != nil {
		return 0, err
	}

	return fee / FeeDenominator, nil
}

// SplitCollateral divides an exiting member's residual collateral between
// the organizer (compensation for default administration) and the slashed
// pool held for the remaining members. The organizer share floors, so the
// redistribution side picks up any odd unit.
func SplitCollateral(collateral uint64) (organizerShare, redistributionShare uint64) {

	organizerShare = collateral / 2
	redistributionShare = collateral - organizerShare

	return organizerShare, redistributionShare
}

// PayoutAmounts computes the gross pot, the organizer fee, and the net
// recipient payout for one payout round. The pot for payout purposes is
// computed over the members actually present, not the starting roster size.
func (c *Cycle) PayoutAmounts() (totalPayout, organizerFee, recipientPayout uint64, err error) {

	totalPayout, err = payoutTotal(c.AmountPerUser, uint64(c.CurrentParticipants), uint64(c.ContributionsPerPayout))
	if err != nil {
		return 0, 0, 0, err
	}

	organizerFee, err = feeOf(totalPayout, uint64(c.OrganizerFeeBps))
	if err != nil {
		return 0, 0, 0, err
	}

	// organizerFee <= totalPayout since fee bps <= denominator
	recipientPayout = totalPayout - organizerFee

	return totalPayout, organizerFee, recipientPayout, nil
}
