package cycle

// Round scheduling is pure arithmetic over the cycle's counters; the clock
// is read once per operation by the caller and passed in.

// RoundDue reports whether the current round boundary has been reached.
func (c *Cycle) RoundDue(now int64) bool {
	return now >= c.NextRoundTime
}

// GraceElapsed reports whether the grace period for the current round has
// passed, opening the default-reporting window.
func (c *Cycle) GraceElapsed(now int64) bool {
	return now > c.NextRoundTime
}

// IsPayoutRound reports whether advancing past the current round pays out
// the pot, i.e. every contributions_per_payout rounds.
func (c *Cycle) IsPayoutRound() bool {
	return (c.CurrentRound+1)%uint64(c.ContributionsPerPayout) == 0
}

// PayoutIndex is the position in payout_order due to receive the pot for
// the current round. Only meaningful when IsPayoutRound is true.
func (c *Cycle) PayoutIndex() uint64 {
	return (c.CurrentRound+1)/uint64(c.ContributionsPerPayout) - 1
}

// DueRecipient returns the member due for payout when the current round is
// a payout round. The second return is false on non-payout rounds or when
// roster removals have shrunk payout_order past the computed index.
func (c *Cycle) DueRecipient() (string, bool) {

	if !c.IsPayoutRound() {
		return "", false
	}

	idx := c.PayoutIndex()
	if idx >= uint64(len(c.PayoutOrder)) {
		return "", false
	}

	return c.PayoutOrder[idx], true
}
