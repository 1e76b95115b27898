// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Default discovery caps, applied when an Options field is zero.
const (
	DefaultMaxURLLength   = 2000
	DefaultMaxPages       = 100000
	DefaultMaxBinaryBytes = 1 << 30 // 1 GiB of stored document payloads
)

// Options caps what the crawl is allowed to accumulate
type Options struct {
	MaxURLLength   int   // longest URL accepted into the frontier
	MaxPages       int   // page table row cap
	MaxBinaryBytes int64 // total bytes of binary payloads kept
}

// DefaultOptions returns the caps used when the configuration does not
// override them
func DefaultOptions() Options {
	return Options{
		MaxURLLength:   DefaultMaxURLLength,
		MaxPages:       DefaultMaxPages,
		MaxBinaryBytes: DefaultMaxBinaryBytes,
	}
}

// Store represents the database store
type Store struct {
	db   *gorm.DB
	opts Options
}

// NewStore opens (creating if needed) the SQLite database at dbPath
// and migrates the schema
func NewStore(dbPath string, opts Options) (*Store, error) {
	if opts.MaxURLLength <= 0 {
		opts.MaxURLLength = DefaultMaxURLLength
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.MaxBinaryBytes <= 0 {
		opts.MaxBinaryBytes = DefaultMaxBinaryBytes
	}

	// Create the parent directory if it doesn't exist
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	// Verify directory was created
	if info, err := os.Stat(dbDir); err != nil {
		return nil, fmt.Errorf("database directory does not exist after creation: %v", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("database path exists but is not a directory: %s", dbDir)
	}

	// Configure SQLite with pragmas for better concurrency
	// WAL mode enables concurrent reads and writes
	// busy_timeout prevents immediate "database is locked" errors
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache_size=1000000000", dbPath)

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// Get underlying SQL DB and configure connection pool
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %v", err)
	}

	// Set connection pool settings for better concurrency
	sqlDB.SetMaxOpenConns(25)   // Max number of open connections
	sqlDB.SetMaxIdleConns(5)    // Max number of idle connections
	sqlDB.SetConnMaxLifetime(0) // Connections never expire (reuse them)
	sqlDB.SetConnMaxIdleTime(0) // Idle connections never expire

	// Auto migrate the schema
	if err := database.AutoMigrate(&Site{}, &Page{}, &PageData{}, &Image{}, &Link{}, &Signature{}, &ShinglePosting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	// Index for the frontier lease scan: oldest unleased FRONTIER row
	if err := database.Exec("CREATE INDEX IF NOT EXISTS idx_page_lease ON page(page_type_code, active_in_crawler, id)").Error; err != nil {
		return nil, fmt.Errorf("failed to create lease index: %v", err)
	}

	return &Store{db: database, opts: opts}, nil
}

// DB returns the underlying GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the database connections
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
