// Package database provides the optional on-disk cache of data source
// answers, backed by BoltDB.
package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// Default database file permissions
	dbFileMode = 0600
	dbDirMode  = 0755

	// Default database filename
	defaultDBFile = "filmdocs.db"

	bodiesBucket = "bodies"
	openTimeout  = 2 * time.Second
)

// CachedBody is a stored data source answer.
type CachedBody struct {
	Key         string    `json:"key"`
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type"`
	StoredAt    time.Time `json:"stored_at"`
}

// Database defines the persistence operations used by the data source client.
type Database interface {
	// GetCachedBody returns the body stored under key, or nil when absent
	GetCachedBody(key string) (*CachedBody, error)
	// StoreBody inserts or replaces a body
	StoreBody(body *CachedBody) error
	// DeleteOlderThan removes bodies stored before now-age and returns how many
	DeleteOlderThan(age time.Duration) (int, error)
	// Close closes the database
	Close() error
}

// BoltDB implements Database on a single bbolt bucket.
type BoltDB struct {
	db  *bolt.DB
	now func() time.Time
}

// NewBolt opens (or creates) the database at dbPath.
// If dbPath is empty, uses the default database file in current directory.
func NewBolt(dbPath string) (*BoltDB, error) {
	if dbPath == "" {
		dbPath = filepath.Join(".", defaultDBFile)
	}

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, dbFileMode, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bodiesBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltDB{db: db, now: time.Now}, nil
}

// Close closes the database.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// GetCachedBody returns nil, nil when key is not stored.
func (b *BoltDB) GetCachedBody(key string) (*CachedBody, error) {
	var cached *CachedBody
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bodiesBucket)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		cached = &CachedBody{}
		return json.Unmarshal(raw, cached)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cached body: %w", err)
	}
	return cached, nil
}

// StoreBody stamps body with the current time and stores it.
func (b *BoltDB) StoreBody(body *CachedBody) error {
	if body.Key == "" {
		return errors.New("cached body needs a key")
	}
	stored := *body
	stored.StoredAt = b.now()

	raw, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to encode cached body: %w", err)
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bodiesBucket)).Put([]byte(stored.Key), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to store body: %w", err)
	}
	return nil
}

// DeleteOlderThan removes stale bodies.
func (b *BoltDB) DeleteOlderThan(age time.Duration) (int, error) {
	cutoff := b.now().Add(-age)
	removed := 0

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bodiesBucket))
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var cached CachedBody
			if err := json.Unmarshal(v, &cached); err != nil || cached.StoredAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old bodies: %w", err)
	}
	return removed, nil
}
