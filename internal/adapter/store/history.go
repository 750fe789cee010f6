package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"recommend/internal/domain"
	"recommend/internal/port"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var (
	bucketRuns       = []byte("runs")
	bucketRunsByTime = []byte("runs_by_time")
	bucketMeta       = []byte("meta")
	keySchemaVersion = []byte("schema_version")
)

var _ port.HistoryStore = (*HistoryStore)(nil)

// HistoryStore keeps completed runs in a bbolt file.
type HistoryStore struct {
	db *bbolt.DB
}

// NewHistoryStore opens (or creates) the history database at path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRuns, bucketRunsByTime, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return checkSchema(tx.Bucket(bucketMeta))
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &HistoryStore{db: db}, nil
}

// checkSchema stamps a new database and rejects one written by a newer version.
func checkSchema(b *bbolt.Bucket) error {
	data := b.Get(keySchemaVersion)
	if data == nil {
		v, err := json.Marshal(CurrentSchemaVersion)
		if err != nil {
			return err
		}
		return b.Put(keySchemaVersion, v)
	}

	var version int
	if err := json.Unmarshal(data, &version); err != nil {
		return fmt.Errorf("corrupt schema version: %w", err)
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("history schema version %d is newer than supported version %d", version, CurrentSchemaVersion)
	}
	return nil
}

// timeKey orders runs by creation time, then ID.
func timeKey(run domain.Run) []byte {
	key := make([]byte, 8, 8+len(run.ID))
	binary.BigEndian.PutUint64(key, uint64(run.CreatedAt.UnixNano()))
	return append(key, run.ID...)
}

// PutRun stores run, replacing any run with the same ID.
func (s *HistoryStore) PutRun(run domain.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}

	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		byTime := tx.Bucket(bucketRunsByTime)

		if old := runs.Get([]byte(run.ID)); old != nil {
			var prev domain.Run
			if err := json.Unmarshal(old, &prev); err == nil {
				if err := byTime.Delete(timeKey(prev)); err != nil {
					return err
				}
			}
		}

		if err := runs.Put([]byte(run.ID), data); err != nil {
			return err
		}
		return byTime.Put(timeKey(run), []byte(run.ID))
	})
}

// GetRun returns the run with the given ID, or domain.ErrNotFound.
func (s *HistoryStore) GetRun(id string) (domain.Run, error) {
	var run domain.Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRuns).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: run %s", domain.ErrNotFound, id)
		}
		return json.Unmarshal(data, &run)
	})
	return run, err
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
func (s *HistoryStore) ListRuns(limit int) ([]domain.Run, error) {
	var runs []domain.Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRuns)
		c := tx.Bucket(bucketRunsByTime).Cursor()
		for k, id := c.Last(); k != nil; k, id = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			raw := data.Get(id)
			if raw == nil {
				continue
			}
			var run domain.Run
			if err := json.Unmarshal(raw, &run); err != nil {
				return fmt.Errorf("failed to decode run %s: %w", id, err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
