package storage

import (
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"circlepot/cycle"
)

// Memberships are stored within a per-cycle bucket for easy retrieval.

func (s *Storage) GetMembership(organizer string, nonce uint64, member string) (*cycle.Membership, error) {

	var m *cycle.Membership

	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		m, err = getMembership(tx, organizer, nonce, member)
		return err
	})

	return m, err
}

func (s *Storage) SaveMembership(m *cycle.Membership) error {

	return s.db.Update(func(tx *bolt.Tx) error {
		return putMembership(tx, m)
	})
}

// ListMemberships returns every membership record of a cycle.
func (s *Storage) ListMemberships(organizer string, nonce uint64) ([]*cycle.Membership, error) {

	var memberships []*cycle.Membership

	err := s.db.View(func(tx *bolt.Tx) error {

		cb := tx.Bucket([]byte(MEMBERS_BUCKET)).Bucket(cycleKey(organizer, nonce))
		if cb == nil {
			return nil
		}

		c := cb.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {

			var m cycle.Membership
			if err := json.Unmarshal(v, &m); err != nil {
				log.WithError(err).Error("Unable to unmarshal membership record")
				continue
			}

			memberships = append(memberships, &m)
		}

		return nil
	})

	return memberships, err
}

func getMembership(tx *bolt.Tx, organizer string, nonce uint64, member string) (*cycle.Membership, error) {

	cb := tx.Bucket([]byte(MEMBERS_BUCKET)).Bucket(cycleKey(organizer, nonce))
	if cb == nil {
		return nil, ErrNotFound
	}

	recordBytes := cb.Get([]byte(member))
	if recordBytes == nil {
		return nil, ErrNotFound
	}

	var m cycle.Membership
	if err := json.Unmarshal(recordBytes, &m); err != nil {
		return nil, errors.Wrap(err, "Unable to unmarshal membership record")
	}

	return &m, nil
}

func putMembership(tx *bolt.Tx, m *cycle.Membership) error {

	recordBytes, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "Unable to marshal membership record")
	}

	cb, err := tx.Bucket([]byte(MEMBERS_BUCKET)).CreateBucketIfNotExists(cycleKey(m.Organizer, m.Nonce))
	if err != nil {
		return errors.Wrap(err, "Unable to create cycle members bucket")
	}

	return cb.Put([]byte(m.Member), recordBytes)
}

func deleteMembership(tx *bolt.Tx, m *cycle.Membership) error {

	cb := tx.Bucket([]byte(MEMBERS_BUCKET)).Bucket(cycleKey(m.Organizer, m.Nonce))
	if cb == nil {
		return nil
	}

	return cb.Delete([]byte(m.Member))
}
