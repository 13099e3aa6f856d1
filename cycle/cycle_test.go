package cycle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		AmountPerUser:          100,
		MaxParticipants:        5,
		OrganizerFeeBps:        500,
		ContributionInterval:   3600,
		ContributionsPerPayout: 1,
		RoundCount:             5,
		PayoutOrder:            []string{"m1", "m2", "m3", "m4", "m5"},
		TokenKind:              "USDT",
	}
}

func TestComputePot(t *testing.T) {

	// amount=100, participants=5, contributions_per_payout=1 => pot=500
	p := testParams()

	pot, err := ComputePot(&p)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), pot)

	orgStake, err := RequiredOrganizerStake(pot)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), orgStake)

	memberStake, err := RequiredMemberStake(pot)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), memberStake)
}

func TestComputePotOverflow(t *testing.T) {

	p := testParams()
	p.AmountPerUser = math.MaxUint64

	_, err := ComputePot(&p)
	assert.Error(t, err)
}

func TestParamsValidate(t *testing.T) {

	p := testParams()
	require.NoError(t, p.Validate())

	short := testParams()
	short.PayoutOrder = short.PayoutOrder[:4]
	assert.Equal(t, ErrInvalidPayoutOrder, short.Validate())

	dup := testParams()
	dup.PayoutOrder[4] = "m1"
	assert.Equal(t, ErrInvalidPayoutOrder, dup.Validate())

	fee := testParams()
	fee.OrganizerFeeBps = 10001
	assert.Equal(t, ErrInvalidParams, fee.Validate())

	zero := testParams()
	zero.AmountPerUser = 0
	assert.Equal(t, ErrInvalidParams, zero.Validate())

	interval := testParams()
	interval.ContributionInterval = 0
	assert.Equal(t, ErrInvalidParams, interval.Validate())
}

func TestPenaltyTiers(t *testing.T) {

	m := &Membership{Collateral: 1000}

	// 20% per missed round
	penalty, err := Penalty(m, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), penalty)

	penalty, err = Penalty(m, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), penalty)

	penalty, err = Penalty(m, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), penalty)

	// Saturates to full collateral at three missed rounds
	penalty, err = Penalty(m, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), penalty)

	penalty, err = Penalty(m, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), penalty)
}

func TestPenaltyPostPayout(t *testing.T) {

	// Any default after receiving the pot forfeits everything
	m := &Membership{Collateral: 800, PayoutReceived: true}

	penalty, err := Penalty(m, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(800), penalty)
}

func TestPenaltyMonotone(t *testing.T) {

	m := &Membership{Collateral: 1000}

	var last uint64
	for missed := uint64(0); missed <= 5; missed++ {
		penalty, err := Penalty(m, missed)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, penalty, last, "penalty must not decrease with missed rounds")
		assert.LessOrEqual(t, penalty, m.Collateral)
		last = penalty
	}
}

func TestSplitCollateral(t *testing.T) {

	org, redist := SplitCollateral(300)
	assert.Equal(t, uint64(150), org)
	assert.Equal(t, uint64(150), redist)

	// Organizer share floors; redistribution picks up the odd unit
	org, redist = SplitCollateral(301)
	assert.Equal(t, uint64(150), org)
	assert.Equal(t, uint64(151), redist)

	org, redist = SplitCollateral(0)
	assert.Equal(t, uint64(0), org)
	assert.Equal(t, uint64(0), redist)
}

func TestScheduleMultiContributionRounds(t *testing.T) {

	c := &Cycle{Params: testParams()}
	c.ContributionsPerPayout = 2
	c.RoundCount = 3

	// Rounds 0,2,4 pay out (every second round boundary)
	payoutRounds := map[uint64]bool{}
	for r := uint64(0); r < 6; r++ {
		c.CurrentRound = r
		if c.IsPayoutRound() {
			payoutRounds[r] = true
		}
	}
	assert.Equal(t, map[uint64]bool{1: true, 3: true, 5: true}, payoutRounds)

	c.CurrentRound = 1
	assert.Equal(t, uint64(0), c.PayoutIndex())

	c.CurrentRound = 3
	assert.Equal(t, uint64(1), c.PayoutIndex())

	c.CurrentRound = 5
	assert.Equal(t, uint64(2), c.PayoutIndex())
}

func TestDueRecipient(t *testing.T) {

	c := &Cycle{Params: testParams()}

	c.CurrentRound = 0
	recipient, ok := c.DueRecipient()
	require.True(t, ok)
	assert.Equal(t, "m1", recipient)

	c.CurrentRound = 4
	recipient, ok = c.DueRecipient()
	require.True(t, ok)
	assert.Equal(t, "m5", recipient)

	// Roster shrunk below the payout index
	c.PayoutOrder = c.PayoutOrder[:3]
	_, ok = c.DueRecipient()
	assert.False(t, ok)
}

func TestRemoveFromPayoutOrder(t *testing.T) {

	c := &Cycle{Params: testParams()}

	require.True(t, c.RemoveFromPayoutOrder("m3"))
	assert.Equal(t, []string{"m1", "m2", "m4", "m5"}, c.PayoutOrder)

	// Relative order preserved for payout-index arithmetic
	c.CurrentRound = 2
	recipient, ok := c.DueRecipient()
	require.True(t, ok)
	assert.Equal(t, "m4", recipient)

	assert.False(t, c.RemoveFromPayoutOrder("m3"))
	assert.False(t, c.RemoveFromPayoutOrder("stranger"))
}

func TestComplete(t *testing.T) {

	c := &Cycle{Params: testParams()}
	c.ContributionsPerPayout = 2
	c.RoundCount = 3

	c.CurrentRound = 5
	assert.False(t, c.Complete())

	c.CurrentRound = 6
	assert.True(t, c.Complete())
}

func TestMissedRounds(t *testing.T) {

	c := &Cycle{Params: testParams()}
	c.CurrentRound = 2

	m := &Membership{ContributionsMade: 1}
	missed, err := c.MissedRounds(m)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), missed)

	// Over-contribution would underflow and must surface as an error
	m.ContributionsMade = 4
	_, err = c.MissedRounds(m)
	assert.Error(t, err)
}

func TestPayoutAmounts(t *testing.T) {

	// fee 500 bps on a 5000 pot => 250 fee, 4750 net
	c := &Cycle{Params: testParams()}
	c.AmountPerUser = 1000
	c.CurrentParticipants = 5

	total, fee, net, err := c.PayoutAmounts()
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), total)
	assert.Equal(t, uint64(250), fee)
	assert.Equal(t, uint64(4750), net)
}

func TestPayoutAmountsShrunkenRoster(t *testing.T) {

	// Payout is computed over members actually present
	c := &Cycle{Params: testParams()}
	c.CurrentParticipants = 4

	total, fee, net, err := c.PayoutAmounts()
	require.NoError(t, err)
	assert.Equal(t, uint64(400), total)
	assert.Equal(t, uint64(20), fee)
	assert.Equal(t, uint64(380), net)
}
