package cycle

import (
	"circlepot/util"
)

// MissedRounds is how many contributions the member is behind, through
// the current round. A member who tracked every round owes current_round+1
// contributions once the grace period elapses. Underflow here means the
// contribution bookkeeping is corrupt and is surfaced as an error rather
// than wrapped.
func (c *Cycle) MissedRounds(m *Membership) (uint64, error) {
	return util.CheckedSub(c.CurrentRound+1, m.ContributionsMade)
}

// Penalty computes the slash for a defaulting member.
//
// A member who already received the pot has no remaining incentive to pay,
// so any post-payout default forfeits all remaining collateral. Chronic
// defaulters (three or more missed rounds) likewise lose everything.
// Otherwise the slash is 20% of remaining collateral per missed round,
// truncating, which leaves room for good-faith catch-up.
func Penalty(m *Membership, missedRounds uint64) (uint64, error) {

	if m.PayoutReceived {
		return m.Collateral, nil
	}

	if missedRounds >= FullSlashMissedRounds {
		return m.Collateral, nil
	}

	slashed, err := util.CheckedMul(m.Collateral, SlashPctPerMissedRound*missedRounds)
	if err != nil {
		return 0, err
	}

	return slashed / 100, nil
}
