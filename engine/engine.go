// Package engine hosts the cycle operations. Each operation validates its
// preconditions, computes with checked arithmetic, performs at most two
// escrow transfers, then commits every touched record in a single storage
// transaction, so a returned error always means stored state is unchanged.
package engine

import (
	"time"

	"github.com/pkg/errors"

	"circlepot/cycle"
	"circlepot/escrow"
	"circlepot/notifications"
	"circlepot/storage"
)

// Clock is the external time source, read once per time-gated operation.
type Clock interface {
	Now() int64
}

// SystemClock reads wall time in Unix seconds.
type SystemClock struct{}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

type Engine struct {
	storage  *storage.Storage
	escrow   escrow.Transferer
	clock    Clock
	notifier *notifications.NotificationHandler
}

// New wires the engine. The notifier may be nil; notifications are best
// effort and never gate an operation.
func New(db *storage.Storage, transferer escrow.Transferer, clock Clock, notifier *notifications.NotificationHandler) *Engine {

	return &Engine{
		storage:  db,
		escrow:   transferer,
		clock:    clock,
		notifier: notifier,
	}
}

func (e *Engine) notify(message string) {

	if e.notifier != nil {
		e.notifier.SendNotification(message)
	}
}

// loadCycle fetches a cycle record, mapping a storage miss to a not-found
// error the API layer can translate.
func (e *Engine) loadCycle(organizer string, nonce uint64) (*cycle.Cycle, error) {

	c, err := e.storage.GetCycle(organizer, nonce)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to load cycle")
	}

	return c, nil
}

// loadMembership fetches a membership and verifies it belongs to the cycle.
func (e *Engine) loadMembership(c *cycle.Cycle, member string) (*cycle.Membership, error) {

	m, err := e.storage.GetMembership(c.Organizer, c.Nonce, member)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to load membership")
	}

	if !m.BelongsTo(c) {
		return nil, cycle.ErrInvalidCycle
	}

	return m, nil
}
