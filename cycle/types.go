package cycle

import (
	"circlepot/escrow"
	"circlepot/util"
)

const (
	// MaxOrganizerCycles is a lifetime cap on cycles per organizer.
	MaxOrganizerCycles = 5

	// Stake requirements as a percentage of the pot.
	OrganizerStakePct = 20
	MemberStakePct    = 10

	// Slashing policy: 20% of remaining collateral per missed round,
	// full slash at three missed rounds or any post-payout default.
	SlashPctPerMissedRound = 20
	FullSlashMissedRounds  = 3

	// Organizer fee is expressed in basis points of the pot.
	MaxFeeBps      = 10000
	FeeDenominator = 10000
)

// Params are the immutable parameters of a cycle, fixed at creation.
type Params struct {
	AmountPerUser          uint64   `json:"amount_per_user"`
	MaxParticipants        uint8    `json:"max_participants"`
	OrganizerFeeBps        uint16   `json:"organizer_fee_bps"`
	ContributionInterval   int64    `json:"contribution_interval"`
	ContributionsPerPayout uint8    `json:"contributions_per_payout"`
	RoundCount             uint8    `json:"round_count"`
	PayoutOrder            []string `json:"payout_order"`
	TokenKind              string   `json:"token_kind"`
}

// Validate rejects malformed parameters before any record is touched.
func (p *Params) Validate() error {

	if p.AmountPerUser == 0 || p.MaxParticipants == 0 ||
		p.ContributionInterval <= 0 || p.ContributionsPerPayout == 0 ||
		p.RoundCount == 0 || p.TokenKind == "" {
		return ErrInvalidParams
	}

	if p.OrganizerFeeBps > MaxFeeBps {
		return ErrInvalidParams
	}

	if len(p.PayoutOrder) != int(p.MaxParticipants) {
		return ErrInvalidPayoutOrder
	}

	seen := make(map[string]bool, len(p.PayoutOrder))
	for _, member := range p.PayoutOrder {
		if member == "" || seen[member] {
			return ErrInvalidPayoutOrder
		}
		seen[member] = true
	}

	return nil
}

// Cycle is one rotating savings pool, identified by (organizer, nonce).
// PayoutOrder starts as a copy of the params' order and only ever shrinks
// as fully-slashed or exiting members are removed.
type Cycle struct {
	Organizer string `json:"organizer"`
	Nonce     uint64 `json:"nonce"`
	Params
	CreatedAt int64 `json:"created_at"`

	// EscrowAuthority is derived once at creation and reused for every
	// outbound transfer from the cycle's escrow account.
	EscrowAuthority escrow.Authority `json:"escrow_authority"`

	CurrentParticipants uint8  `json:"current_participants"`
	IsActive            bool   `json:"is_active"`
	CurrentRound        uint64 `json:"current_round"`
	NextRoundTime       int64  `json:"next_round_time"`
	OrganizerStake      uint64 `json:"organizer_stake"`
	PotAmount           uint64 `json:"pot_amount"`
	SlashedStakes       uint64 `json:"slashed_stakes"`
}

// Membership is the per-(cycle, participant) record. Collateral only
// shrinks, and IsActive never flips back to true once cleared.
type Membership struct {
	Organizer         string `json:"organizer"`
	Nonce             uint64 `json:"nonce"`
	Member            string `json:"member"`
	ContributionsMade uint64 `json:"contributions_made"`
	PayoutReceived    bool   `json:"payout_received"`
	Collateral        uint64 `json:"collateral"`
	IsActive          bool   `json:"is_active"`
}

// OrganizerAccount aggregates an organizer's exposure across open cycles.
// TotalCycles is a lifetime count and is never decremented.
type OrganizerAccount struct {
	Organizer     string `json:"organizer"`
	TotalCycles   uint64 `json:"total_cycles"`
	LockedStake   uint64 `json:"locked_stake"`
	LastCycleTime int64  `json:"last_cycle_time"`
}

// BelongsTo reports whether the membership record is bound to the cycle.
func (m *Membership) BelongsTo(c *Cycle) bool {
	return m.Organizer == c.Organizer && m.Nonce == c.Nonce
}

// ComputePot returns amount_per_user * max_participants *
// contributions_per_payout; fixed for the life of the cycle.
func ComputePot(p *Params) (uint64, error) {

	pot, err := util.CheckedMul(p.AmountPerUser, uint64(p.MaxParticipants))
	if err != nil {
		return 0, err
	}

	return util.CheckedMul(pot, uint64(p.ContributionsPerPayout))
}

// RequiredOrganizerStake is 20% of the pot, truncating.
func RequiredOrganizerStake(pot uint64) (uint64, error) {

	stake, err := util.CheckedMul(pot, OrganizerStakePct)
	if err != nil {
		return 0, err
	}

	return stake / 100, nil
}

// RequiredMemberStake is 10% of the pot, truncating.
func RequiredMemberStake(pot uint64) (uint64, error) {

	stake, err := util.CheckedMul(pot, MemberStakePct)
	if err != nil {
		return 0, err
	}

	return stake / 100, nil
}

// TotalRounds is round_count * contributions_per_payout, the number of
// contribution rounds before the cycle goes terminal.
func (c *Cycle) TotalRounds() (uint64, error) {
	return util.CheckedMul(uint64(c.RoundCount), uint64(c.ContributionsPerPayout))
}

// Complete reports whether the cycle has run every payout round.
func (c *Cycle) Complete() bool {
	return c.CurrentRound/uint64(c.ContributionsPerPayout) >= uint64(c.RoundCount)
}

// InPayoutOrder reports whether member is still present in the roster.
func (c *Cycle) InPayoutOrder(member string) bool {

	for _, m := range c.PayoutOrder {
		if m == member {
			return true
		}
	}

	return false
}

// RemoveFromPayoutOrder compacts the roster in place, preserving the
// relative order of the remaining members so payout-index arithmetic
// stays aligned. Returns false if the member was not present.
func (c *Cycle) RemoveFromPayoutOrder(member string) bool {

	for i, m := range c.PayoutOrder {
		if m == member {
			c.PayoutOrder = append(c.PayoutOrder[:i], c.PayoutOrder[i+1:]...)
			return true
		}
	}

	return false
}
