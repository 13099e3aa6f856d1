package cycle

import (
	"github.com/pkg/errors"
)

// Precondition and validation failures. Every operation checks these before
// touching any record, so a returned error always means nothing changed.
var (
	ErrInvalidParams          = errors.New("invalid cycle parameters")
	ErrInvalidPayoutOrder     = errors.New("payout order does not match max participants")
	ErrTooManyCycles          = errors.New("organizer has reached the cycle cap")
	ErrInsufficientStake      = errors.New("insufficient balance for required stake")
	ErrCycleExists            = errors.New("cycle already exists")
	ErrCycleFull              = errors.New("cycle is full")
	ErrCycleNotActive         = errors.New("cycle is not active")
	ErrCycleActive            = errors.New("cycle is already active")
	ErrCycleStillActive       = errors.New("cycle is still active")
	ErrCycleComplete          = errors.New("cycle has completed all rounds")
	ErrNotInPayoutOrder       = errors.New("member is not in the payout order")
	ErrAlreadyJoined          = errors.New("member has already joined this cycle")
	ErrAlreadyContributed     = errors.New("member has already contributed this round")
	ErrRoundWindowClosed      = errors.New("contribution window for this round has closed")
	ErrPayoutTooEarly         = errors.New("round boundary not yet reached")
	ErrInvalidPayoutRecipient = errors.New("recipient is not due for this payout round")
	ErrTooEarlyToReport       = errors.New("grace period has not elapsed")
	ErrMemberNotActive        = errors.New("membership is not active")
	ErrMemberStillActive      = errors.New("membership is still active")
	ErrInvalidCycle           = errors.New("membership does not belong to this cycle")
	ErrMembersRemain          = errors.New("cycle still has membership records")
)
