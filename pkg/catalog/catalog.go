package catalog

import (
	"encoding/json"
	"path/filepath"

	"github.com/emberforge/ember/pkg/errs"
	bolt "go.etcd.io/bbolt"

	"github.com/google/uuid"
)

var (
	bucketClusters = []byte("clusters")
	bucketConfigs  = []byte("configs")
)

// BoltCatalog implements Catalog on a single bbolt database file.
type BoltCatalog struct {
	db *bolt.DB
}

// Open creates or opens the catalog database under dataDir.
func Open(dataDir string) (*BoltCatalog, error) {
	dbPath := filepath.Join(dataDir, "catalog.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, errs.New(errs.IoError, err, "opening catalog database at %s", dbPath)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketClusters, bucketConfigs} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errs.New(errs.IoError, err, "initializing catalog buckets")
	}

	return &BoltCatalog{db: db}, nil
}

// Close closes the database.
func (c *BoltCatalog) Close() error {
	return c.db.Close()
}

func put(db *bolt.DB, bucket []byte, key string, v any) error {
	return db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func get[T any](db *bolt.DB, bucket []byte, key string) (*T, error) {
	var v T
	err := db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(key))
		if data == nil {
			return errs.New(errs.ResourceNotFound, nil, "catalog entry %q not found", key)
		}
		return json.Unmarshal(data, &v)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func list[T any](db *bolt.DB, bucket []byte) ([]T, error) {
	var out []T
	err := db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			var entry T
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			out = append(out, entry)
			return nil
		})
	})
	return out, err
}

func del(db *bolt.DB, bucket []byte, key string) error {
	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

func (c *BoltCatalog) PutCluster(e ClusterEntry) error {
	if e.ID == uuid.Nil {
		if existing, err := c.GetCluster(e.Name); err == nil {
			e.ID = existing.ID
		} else {
			e.ID = uuid.New()
		}
	}
	return put(c.db, bucketClusters, e.Name, e)
}
func (c *BoltCatalog) GetCluster(name string) (*ClusterEntry, error) {
	return get[ClusterEntry](c.db, bucketClusters, name)
}
func (c *BoltCatalog) ListClusters() ([]ClusterEntry, error) {
	return list[ClusterEntry](c.db, bucketClusters)
}
func (c *BoltCatalog) DeleteCluster(name string) error { return del(c.db, bucketClusters, name) }

func (c *BoltCatalog) PutConfig(e ConfigEntry) error {
	if e.ID == uuid.Nil {
		if existing, err := c.GetConfig(e.Name); err == nil {
			e.ID = existing.ID
		} else {
			e.ID = uuid.New()
		}
	}
	return put(c.db, bucketConfigs, e.Name, e)
}
func (c *BoltCatalog) GetConfig(name string) (*ConfigEntry, error) {
	return get[ConfigEntry](c.db, bucketConfigs, name)
}
func (c *BoltCatalog) ListConfigs() ([]ConfigEntry, error) {
	return list[ConfigEntry](c.db, bucketConfigs)
}
func (c *BoltCatalog) DeleteConfig(name string) error { return del(c.db, bucketConfigs, name) }
