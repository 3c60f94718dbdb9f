// Package storage implements the license and organization repositories on
// an embedded badger key-value store.
//
// Records are stored as JSON under these keys:
//
//	organization:{id}             organization record
//	license:{id}                  license record
//	license-org:{orgId}:{id}      empty value; index of licenses by owner
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v3"

	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
)

const healthCheckName = "storage"

// Store wraps a badger database shared by the repositories.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens the database described by cfg. An in-memory store keeps nothing
// on disk and is empty on every start.
func Open(cfg config.StorageConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options

	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	// Small caches; the data set is a handful of records.
	opts = opts.
		WithLogger(badgerLogger{logger: logger}).
		WithBlockCacheSize(16 << 20).
		WithIndexCacheSize(16 << 20).
		WithNumMemtables(2)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store: %w", err)
	}

	logger.Info("storage opened",
		slog.Bool("in_memory", cfg.InMemory),
		slog.String("path", cfg.Path),
	)

	return &Store{db: db, logger: logger}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return healthCheckName
}

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.db.IsClosed() {
		return errors.New("badger store is closed")
	}

	return s.db.View(func(*badger.Txn) error { return nil })
}

// get decodes the JSON value at key into v. found is false when the key does
// not exist.
func (s *Store) get(ctx context.Context, key string, v any) (found bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("reading %s: %w", key, err)
	}

	return true, nil
}

// scan calls fn with the key and value of every entry under prefix, in key
// order.
func (s *Store) scan(ctx context.Context, prefix string, fn func(key, val []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := []byte(prefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()

			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", prefix, err)
	}

	return nil
}

// empty reports whether nothing is stored under prefix.
func (s *Store) empty(ctx context.Context, prefix string) (bool, error) {
	n := 0

	err := s.scan(ctx, prefix, func([]byte, []byte) error {
		n++
		return nil
	})

	return n == 0, err
}

// update runs fn in a read-write transaction.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(fn)
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	return txn.Set([]byte(key), data)
}

// badgerLogger routes badger's printf-style logging to slog. Info and debug
// chatter from compactions is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, format, args)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log(slog.LevelWarn, format, args)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log(slog.LevelDebug, format, args)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug, format, args)
}

func (l badgerLogger) log(level slog.Level, format string, args []any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	l.logger.Log(context.Background(), level, msg, slog.String("component", "badger"))
}
