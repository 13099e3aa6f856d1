package storage

import (
	"encoding/json"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"circlepot/cycle"
)

func (s *Storage) GetOrganizer(organizer string) (*cycle.OrganizerAccount, error) {

	var org *cycle.OrganizerAccount

	err := s.db.View(func(tx *bolt.Tx) error {

		recordBytes := tx.Bucket([]byte(ORGANIZERS_BUCKET)).Get([]byte(organizer))
		if recordBytes == nil {
			return ErrNotFound
		}

		var record cycle.OrganizerAccount
		if err := json.Unmarshal(recordBytes, &record); err != nil {
			return errors.Wrap(err, "Unable to unmarshal organizer record")
		}
		org = &record

		return nil
	})

	return org, err
}

func putOrganizer(tx *bolt.Tx, org *cycle.OrganizerAccount) error {

	recordBytes, err := json.Marshal(org)
	if err != nil {
		return errors.Wrap(err, "Unable to marshal organizer record")
	}

	return tx.Bucket([]byte(ORGANIZERS_BUCKET)).Put([]byte(org.Organizer), recordBytes)
}
