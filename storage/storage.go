package storage

import (
	"encoding/binary"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	DATABASE_FILE = "circlepot.db"

	ORGANIZERS_BUCKET    = "organizers"
	CYCLES_BUCKET        = "cycles"
	MEMBERS_BUCKET       = "members"
	CONFIG_BUCKET        = "config"
	NOTIFICATIONS_BUCKET = "notifications"
)

var ErrNotFound = errors.New("record not found")

type Storage struct {
	db *bolt.DB
}

func InitStorage(dataDir string) (*Storage, error) {

	db, err := bolt.Open(filepath.Join(dataDir, DATABASE_FILE), 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open database")
	}

	// Ensure buckets exist, and migrations
	err = db.Update(func(tx *bolt.Tx) error {

		for _, bucket := range []string{ORGANIZERS_BUCKET, CYCLES_BUCKET, MEMBERS_BUCKET} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return errors.Wrapf(err, "Cannot create %s bucket", bucket)
			}
		}

		cb, err := tx.CreateBucketIfNotExists([]byte(CONFIG_BUCKET))
		if err != nil {
			return errors.Wrap(err, "Cannot create config bucket")
		}

		if _, err := cb.CreateBucketIfNotExists([]byte(NOTIFICATIONS_BUCKET)); err != nil {
			return errors.Wrap(err, "Cannot create notifications bucket")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() {
	s.db.Close()
	log.Info("Database closed")
}

// cycleKey builds the composite (organizer, nonce) key used by the cycles
// bucket and the per-cycle members buckets.
func cycleKey(organizer string, nonce uint64) []byte {
	return append([]byte(organizer+"/"), itob64(nonce)...)
}

// itob64 returns an 8-byte big endian representation of v.
func itob64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
