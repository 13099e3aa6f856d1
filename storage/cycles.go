package storage

import (
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"circlepot/cycle"
)

func (s *Storage) GetCycle(organizer string, nonce uint64) (*cycle.Cycle, error) {

	var c *cycle.Cycle

	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		c, err = getCycle(tx, organizer, nonce)
		return err
	})

	return c, err
}

// ListActiveCycles returns every cycle currently marked active; used by the
// round-watch loop.
func (s *Storage) ListActiveCycles() ([]*cycle.Cycle, error) {

	var cycles []*cycle.Cycle

	err := s.db.View(func(tx *bolt.Tx) error {

		c := tx.Bucket([]byte(CYCLES_BUCKET)).Cursor()

		for k, v := c.First(); k != nil; k, v = c.Next() {

			var record cycle.Cycle
			if err := json.Unmarshal(v, &record); err != nil {
				log.WithError(err).Error("Unable to unmarshal cycle record")
				continue
			}

			if record.IsActive {
				cycles = append(cycles, &record)
			}
		}

		return nil
	})

	return cycles, err
}

// SaveCycleCreation persists a brand new cycle together with the updated
// organizer ledger record in one transaction.
func (s *Storage) SaveCycleCreation(c *cycle.Cycle, org *cycle.OrganizerAccount) error {

	return s.db.Update(func(tx *bolt.Tx) error {

		if err := putCycle(tx, c); err != nil {
			return err
		}

		return putOrganizer(tx, org)
	})
}

// SaveCycle persists a mutated cycle record.
func (s *Storage) SaveCycle(c *cycle.Cycle) error {

	return s.db.Update(func(tx *bolt.Tx) error {
		return putCycle(tx, c)
	})
}

// SaveCycleAndMembership commits a cycle and one membership atomically;
// the write path for join, payout and default operations.
func (s *Storage) SaveCycleAndMembership(c *cycle.Cycle, m *cycle.Membership) error {

	return s.db.Update(func(tx *bolt.Tx) error {

		if err := putCycle(tx, c); err != nil {
			return err
		}

		return putMembership(tx, m)
	})
}

// SaveCycleRemoveMembership commits a cycle mutation and deletes a
// membership record in the same transaction; the write path for collateral
// claims and pre-activation exits.
func (s *Storage) SaveCycleRemoveMembership(c *cycle.Cycle, m *cycle.Membership) error {

	return s.db.Update(func(tx *bolt.Tx) error {

		if err := putCycle(tx, c); err != nil {
			return err
		}

		return deleteMembership(tx, m)
	})
}

// DeleteCycle removes a closed cycle and its members bucket, and persists
// the organizer ledger with the stake unlocked.
func (s *Storage) DeleteCycle(c *cycle.Cycle, org *cycle.OrganizerAccount) error {

	return s.db.Update(func(tx *bolt.Tx) error {

		key := cycleKey(c.Organizer, c.Nonce)

		if err := tx.Bucket([]byte(CYCLES_BUCKET)).Delete(key); err != nil {
			return errors.Wrap(err, "Unable to delete cycle record")
		}

		mb := tx.Bucket([]byte(MEMBERS_BUCKET))
		if mb.Bucket(key) != nil {
			if err := mb.DeleteBucket(key); err != nil {
				return errors.Wrap(err, "Unable to delete cycle members bucket")
			}
		}

		return putOrganizer(tx, org)
	})
}

func getCycle(tx *bolt.Tx, organizer string, nonce uint64) (*cycle.Cycle, error) {

	recordBytes := tx.Bucket([]byte(CYCLES_BUCKET)).Get(cycleKey(organizer, nonce))
	if recordBytes == nil {
		return nil, ErrNotFound
	}

	var c cycle.Cycle
	if err := json.Unmarshal(recordBytes, &c); err != nil {
		return nil, errors.Wrap(err, "Unable to unmarshal cycle record")
	}

	return &c, nil
}

func putCycle(tx *bolt.Tx, c *cycle.Cycle) error {

	recordBytes, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "Unable to marshal cycle record")
	}

	return tx.Bucket([]byte(CYCLES_BUCKET)).Put(cycleKey(c.Organizer, c.Nonce), recordBytes)
}
