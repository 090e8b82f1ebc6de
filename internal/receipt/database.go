package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	receiptsBucket  = []byte("receipts")
	createdAtBucket = []byte("receipts_by_created")
)

// createdAtLayout is fixed width so index keys sort chronologically
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// ErrReceiptNotFound is returned when no receipt has the requested ID
var ErrReceiptNotFound = errors.New("receipt not found")

// DB defines the interface for database operations
type DB interface {
	// SaveReceipt inserts or replaces a receipt
	SaveReceipt(receipt *Receipt) error

	GetReceipt(id string) (*Receipt, error)

	// ListReceipts returns all receipts, most recently created first
	ListReceipts() ([]*Receipt, error)

	DeleteReceipt(id string) error

	Close() error
}

// BoltDB stores receipts as JSON in a bbolt file, with a secondary
// index on creation time
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database file and rebuilds the
// creation-time index if it is missing
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		receipts, err := tx.CreateBucketIfNotExists(receiptsBucket)
		if err != nil {
			return err
		}
		index, err := tx.CreateBucketIfNotExists(createdAtBucket)
		if err != nil {
			return err
		}
		if index.Stats().KeyN > 0 {
			return nil
		}
		return receipts.ForEach(func(k, v []byte) error {
			var r Receipt
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("unmarshaling receipt %s: %w", k, err)
			}
			return index.Put(indexKey(&r), []byte(r.ID))
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func indexKey(r *Receipt) []byte {
	return []byte(r.CreatedAt.UTC().Format(createdAtLayout) + "\x00" + r.ID)
}

func getReceipt(tx *bbolt.Tx, id string) (*Receipt, error) {
	data := tx.Bucket(receiptsBucket).Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, id)
	}
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshaling receipt %s: %w", id, err)
	}
	return &r, nil
}

// SaveReceipt inserts or replaces a receipt
func (b *BoltDB) SaveReceipt(receipt *Receipt) error {
	if receipt.ID == "" {
		return fmt.Errorf("receipt ID is required")
	}
	data, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshaling receipt: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		index := tx.Bucket(createdAtBucket)
		// CreatedAt may have changed since the last save
		if prev, err := getReceipt(tx, receipt.ID); err == nil {
			if err := index.Delete(indexKey(prev)); err != nil {
				return err
			}
		}
		if err := tx.Bucket(receiptsBucket).Put([]byte(receipt.ID), data); err != nil {
			return err
		}
		return index.Put(indexKey(receipt), []byte(receipt.ID))
	})
}

// GetReceipt retrieves a receipt by ID
func (b *BoltDB) GetReceipt(id string) (*Receipt, error) {
	var receipt *Receipt
	err := b.db.View(func(tx *bbolt.Tx) error {
		var err error
		receipt, err = getReceipt(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// ListReceipts walks the creation-time index backwards
func (b *BoltDB) ListReceipts() ([]*Receipt, error) {
	receipts := make([]*Receipt, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(createdAtBucket).Cursor()
		for k, id := c.Last(); k != nil; k, id = c.Prev() {
			r, err := getReceipt(tx, string(id))
			if err != nil {
				return fmt.Errorf("index entry %q: %w", k, err)
			}
			receipts = append(receipts, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// DeleteReceipt removes a receipt and its index entry
func (b *BoltDB) DeleteReceipt(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		r, err := getReceipt(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Bucket(createdAtBucket).Delete(indexKey(r)); err != nil {
			return err
		}
		return tx.Bucket(receiptsBucket).Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
