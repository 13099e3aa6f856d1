package escrow

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"circlepot/util"
)

// MemoryLedger is the in-process reference implementation of the custody
// collaborator. Balances live in memory; a mutex stands in for the
// settlement layer's transaction serialization.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]uint64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]uint64),
	}
}

// Mint credits an account out of thin air. Dev/test funding only.
func (l *MemoryLedger) Mint(account string, amount uint64) error {

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := util.CheckedAdd(l.balances[account], amount)
	if err != nil {
		return err
	}
	l.balances[account] = balance

	log.WithFields(log.Fields{
		"Account": account, "Amount": amount,
	}).Debug("Minted escrow funds")

	return nil
}

func (l *MemoryLedger) Balance(account string) (uint64, error) {

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[account], nil
}

// Transfer moves amount from one account to another. A non-nil authority
// must control the source account; a nil authority means the caller owns
// the source, its identity having been verified upstream.
func (l *MemoryLedger) Transfer(from, to string, authority *Authority, amount uint64) error {

	if authority != nil && authority.Account != from {
		return ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, err := util.CheckedSub(l.balances[from], amount)
	if err != nil {
		return ErrInsufficientFunds
	}

	toBalance, err := util.CheckedAdd(l.balances[to], amount)
	if err != nil {
		return err
	}

	l.balances[from] = fromBalance
	l.balances[to] = toBalance

	return nil
}
