package database

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/victorivanov/complaintbox/internal/models"
	"github.com/victorivanov/complaintbox/internal/snowflake"
)

const complaintsBucket = "complaints"

// boltComplaintRepo keeps complaints in an embedded BoltDB file. Keys are
// big-endian IDs, so a bucket scan yields insertion order.
type boltComplaintRepo struct {
	db        *bolt.DB
	snowflake *snowflake.Generator
}

// OpenBoltRepository opens (or creates) the BoltDB file at path.
func OpenBoltRepository(path string, sf *snowflake.Generator) (ComplaintRepository, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file %s: %w: %w", path, ErrStoreUnavailable, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(complaintsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w: %w", ErrStoreUnavailable, err)
	}

	return &boltComplaintRepo{db: db, snowflake: sf}, nil
}

func idKey(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

func (r *boltComplaintRepo) Create(_ context.Context, c *models.Complaint) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("create complaint: %w: %w", ErrValidationRejected, err)
	}
	stamp(c, r.snowflake)

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding complaint: %w", err)
	}

	var duplicate bool
	err = r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(complaintsBucket))
		key := idKey(c.ID)
		if b.Get(key) != nil {
			duplicate = true
			return nil
		}
		return b.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("create complaint: %w: %w", ErrStoreUnavailable, err)
	}
	if duplicate {
		return fmt.Errorf("create complaint: %w: id %d already exists", ErrValidationRejected, c.ID)
	}
	return nil
}

func (r *boltComplaintRepo) ListAll(_ context.Context) ([]models.Complaint, error) {
	complaints := []models.Complaint{}

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(complaintsBucket)).ForEach(func(_, v []byte) error {
			var c models.Complaint
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			complaints = append(complaints, c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w: %w", ErrStoreUnavailable, err)
	}

	sortNewestFirst(complaints)
	return complaints, nil
}

func (r *boltComplaintRepo) Ping(_ context.Context) error {
	err := r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(complaintsBucket)) == nil {
			return fmt.Errorf("bucket %q missing", complaintsBucket)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ping: %w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *boltComplaintRepo) Close() error {
	return r.db.Close()
}
