package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/expense-tracker/pkg/transaction"
	bolt "go.etcd.io/bbolt"
)

var bucketRecords = []byte("records")

// BoltAdapter keeps the collection in a bbolt file. Keys are insertion
// positions, values are the JSON objects of the file format.
type BoltAdapter struct {
	db   *bolt.DB
	path string
}

// OpenBolt opens (creating if needed) the bbolt database at path
func OpenBolt(path string) (*BoltAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("failed to create database directory: %w", err)}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("failed to open database: %w", err)}
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRecords); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketRecords, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, &ReadError{Path: path, Err: err}
	}

	return &BoltAdapter{db: db, path: path}, nil
}

// Path returns the database file path
func (a *BoltAdapter) Path() string {
	return a.path
}

// Load reads every record in insertion order
func (a *BoltAdapter) Load() ([]transaction.Record, error) {
	var rows []storedRecord
	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var row storedRecord
			if err := json.Unmarshal(v, &row); err != nil {
				return fmt.Errorf("record at position %d: %w", btoi(k), err)
			}
			rows = append(rows, row)
			return nil
		})
	})
	if err != nil {
		return nil, &ReadError{Path: a.path, Err: err}
	}

	records, err := fromStoredRecords(rows)
	if err != nil {
		return nil, &ReadError{Path: a.path, Err: err}
	}
	return records, nil
}

// Save replaces the bucket contents with records in one update transaction
func (a *BoltAdapter) Save(records []transaction.Record) error {
	err := a.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketRecords) != nil {
			if err := tx.DeleteBucket(bucketRecords); err != nil {
				return fmt.Errorf("failed to clear bucket: %w", err)
			}
		}
		b, err := tx.CreateBucket(bucketRecords)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		for i, r := range records {
			data, err := json.Marshal(toFileRecord(r))
			if err != nil {
				return fmt.Errorf("failed to marshal record %d: %w", r.ID, err)
			}
			if err := b.Put(itob(int64(i)), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &WriteError{Path: a.path, Err: err}
	}
	return nil
}

// Close closes the database
func (a *BoltAdapter) Close() error {
	return a.db.Close()
}

// itob returns an 8-byte big endian representation of v
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	if len(b) != 8 {
		return -1
	}
	return int64(binary.BigEndian.Uint64(b))
}
