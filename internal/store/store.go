// Package store is the client's local durability layer: one JSON blob per
// logical state key, kept in a sqlite database. Keys are independently
// readable and writable; there is no cross-key transactionality.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Logical state keys.
const (
	KeyUser     = "user"
	KeyToken    = "token"
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyLanguage = "language"
)

type Blob struct {
	Key       string `gorm:"primaryKey;size:64;not null"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	if err := db.AutoMigrate(&Blob{}); err != nil {
		return nil, fmt.Errorf("migrate state database: %w", err)
	}

	return &Store{db: db}, nil
}

// Get unmarshals the blob stored under key into out. The boolean reports
// whether the key existed.
func (s *Store) Get(key string, out any) (bool, error) {
	var blob Blob
	err := s.db.Where("key = ?", key).First(&blob).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, fmt.Errorf("read state %q: %w", key, err)
	}

	if err := json.Unmarshal(blob.Value, out); err != nil {
		return false, fmt.Errorf("decode state %q: %w", key, err)
	}
	return true, nil
}

// Put serializes v and writes it under key, replacing any previous value.
func (s *Store) Put(key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state %q: %w", key, err)
	}

	blob := Blob{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := s.db.Save(&blob).Error; err != nil {
		return fmt.Errorf("write state %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if err := s.db.Delete(&Blob{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete state %q: %w", key, err)
	}
	return nil
}
