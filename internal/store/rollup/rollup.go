// Package rollup keeps pre-aggregated lifetime reading totals in Badger so the
// lifetime view never scans the session ledger.
package rollup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/readupapp/readup-server/internal/domain"
)

const (
	userStatsPrefix = "user_stats:"
	maxTxnRetries   = 16
)

// Store wraps a Badger database holding one LifetimeStats document per user.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (or creates) the rollup database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Counters must survive a crash
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	return open(opts, logger)
}

// OpenInMemory opens a rollup store that lives only for the process.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	if logger != nil {
		logger.Info("Rollup store opened", "path", opts.Dir, "in_memory", opts.InMemory)
	}
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing rollup store")
	}
	return s.db.Close()
}

// Get returns the lifetime totals for a user. A user with no activity gets zeroes.
func (s *Store) Get(ctx context.Context, userID string) (*domain.LifetimeStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &domain.LifetimeStats{UserID: userID}
	err := s.db.View(func(txn *badger.Txn) error {
		return load(txn, key(userID), stats)
	})
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats for %s: %w", userID, err)
	}
	return stats, nil
}

// All returns the totals of every user with recorded activity.
func (s *Store) All(ctx context.Context) ([]*domain.LifetimeStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []*domain.LifetimeStats
	prefix := []byte(userStatsPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stats := new(domain.LifetimeStats)
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			})
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("Skipping unreadable rollup", "key", string(it.Item().Key()), "error", err)
				}
				continue
			}
			results = append(results, stats)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// RecordSession adds a reading event to the user's totals.
func (s *Store) RecordSession(ctx context.Context, userID string, seconds int64, day string) error {
	return s.update(ctx, userID, func(stats *domain.LifetimeStats) {
		stats.TotalReadingSeconds += seconds
		stats.SessionsRecorded++
		if day > stats.LastReadDay {
			stats.LastReadDay = day
		}
	})
}

// AddBooksFinished adjusts the finished-book counter, never below zero.
func (s *Store) AddBooksFinished(ctx context.Context, userID string, delta int64) error {
	return s.update(ctx, userID, func(stats *domain.LifetimeStats) {
		stats.BooksFinished = max(0, stats.BooksFinished+delta)
	})
}

// Delete drops a user's totals.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(userID))
	})
}

// update applies fn in a read-modify-write transaction, retrying on write conflicts.
func (s *Store) update(ctx context.Context, userID string, fn func(*domain.LifetimeStats)) error {
	var err error
	for range maxTxnRetries {
		if err = ctx.Err(); err != nil {
			return err
		}

		err = s.db.Update(func(txn *badger.Txn) error {
			k := key(userID)
			stats := &domain.LifetimeStats{UserID: userID}
			if err := load(txn, k, stats); err != nil {
				return err
			}

			fn(stats)
			stats.UpdatedAt = s.now()

			data, err := json.Marshal(stats)
			if err != nil {
				return err
			}
			return txn.Set(k, data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("updating lifetime stats for %s: %w", userID, err)
}

// load decodes the stored document into dest, leaving it untouched when absent.
func load(txn *badger.Txn, k []byte, dest *domain.LifetimeStats) error {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

func key(userID string) []byte {
	return []byte(userStatsPrefix + userID)
}
