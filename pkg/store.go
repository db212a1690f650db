package pkg

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/blake2b-simd"
	"github.com/snapdrop/cli/pkg/model"
	bolt "go.etcd.io/bbolt"
)

// Store is the local durable state: the device fingerprint plus a
// journal of past upload verdicts, all in a single BoltDB file.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (or creates) the BoltDB file at path and makes sure
// all buckets exist.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []model.Store{model.KVConfig, model.UploadJournal, model.WatchFiles} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetConfigValue reads a key from the kvConfig bucket. A missing key
// returns nil with no error.
func (s *Store) GetConfigValue(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(model.KVConfig)).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

// PutConfigValue writes a key to the kvConfig bucket.
func (s *Store) PutConfigValue(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(model.KVConfig)).Put([]byte(key), value)
	})
}

// GetUploadRecord retrieves the journal entry for a content hash, nil
// when the hash has never been submitted from this device.
func (s *Store) GetUploadRecord(fileHash string) (*model.UploadRecord, error) {
	value, err := s.getValue(model.UploadJournal, []byte(fileHash))
	if err != nil || value == nil {
		return nil, err
	}

	var record model.UploadRecord
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upload record: %w", err)
	}
	return &record, nil
}

// SaveUploadRecord journals the verdict of a submission keyed by its
// content hash.
func (s *Store) SaveUploadRecord(record *model.UploadRecord) error {
	record.RecordedAt = time.Now().Unix()
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal upload record: %w", err)
	}
	return s.putValue(model.UploadJournal, []byte(record.FileHash), value)
}

// ListUploadRecords returns every journal entry.
func (s *Store) ListUploadRecords() ([]model.UploadRecord, error) {
	records := make([]model.UploadRecord, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(model.UploadJournal)).ForEach(func(k, v []byte) error {
			var record model.UploadRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal upload record: %w", err)
			}
			records = append(records, record)
			return nil
		})
	})
	return records, err
}

// GetProcessedFile retrieves the watcher record for a local path.
func (s *Store) GetProcessedFile(filePath string) (*model.ProcessedFile, error) {
	value, err := s.getValue(model.WatchFiles, pathKey(filePath))
	if err != nil || value == nil {
		return nil, err
	}

	var file model.ProcessedFile
	if err := json.Unmarshal(value, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal processed file: %w", err)
	}
	return &file, nil
}

// SaveProcessedFile saves the watcher record for a local path.
func (s *Store) SaveProcessedFile(file *model.ProcessedFile) error {
	value, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal processed file: %w", err)
	}
	return s.putValue(model.WatchFiles, pathKey(file.FilePath), value)
}

func (s *Store) getValue(bucket model.Store, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucket)).Get(key)
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

func (s *Store) putValue(bucket model.Store, key, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put(key, value)
	})
}

// pathKey hashes an absolute path into a fixed-length bucket key so
// arbitrarily long paths stay within Bolt's key limits.
func pathKey(path string) []byte {
	sum := blake2b.Sum256([]byte(path))
	return []byte(hex.EncodeToString(sum[:]))
}
