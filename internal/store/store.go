// Package store persists media.File observations as store.Record rows in a
// single-writer sqlite3 database, schema-versioned with golang-migrate.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"mediasync/internal/logging"
	"mediasync/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// Store manages the single sqlite3 database backing a manager.Manager.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// New opens (creating if necessary) the sqlite3 database at dbPath,
// configures WAL journaling, and brings the schema up to date.
func New(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("store: opening database at %s", dbPath)

	if err := diagnosePermissions(dbPath); err != nil {
		logging.Warn("store: permission diagnostics: %v", err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dbPath, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: connect %s: %w", dbPath, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logging.Info("store: ready at %s", dbPath)
	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database connection. Safe to call more than
// once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginBatch starts a write transaction, returning the start time for the
// caller to pass back to EndBatch. The store's mutex is held only while the
// transaction is created, not for its full lifetime.
func (s *Store) BeginBatch(ctx context.Context) (*sql.Tx, time.Time, error) {
	s.mu.Lock()
	tx, err := s.db.BeginTx(ctx, nil)
	s.mu.Unlock()
	if err != nil {
		return nil, time.Time{}, err
	}
	return tx, time.Now(), nil
}

// EndBatch commits tx on a nil err, or rolls it back otherwise, recording
// the transaction's duration under "commit" or "rollback".
func (s *Store) EndBatch(tx *sql.Tx, start time.Time, err error) error {
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return tx.Commit()
}

// UpdateConnectionMetrics refreshes the open-connections gauge from the
// driver's own pool statistics.
func (s *Store) UpdateConnectionMetrics() {
	stats := s.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// UpdateSizeMetrics stats the main database file and its WAL/SHM
// sidecars, recording their sizes.
func (s *Store) UpdateSizeMetrics() {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		label := "main"
		switch suffix {
		case "-wal":
			label = "wal"
		case "-shm":
			label = "shm"
		}
		info, err := os.Stat(s.dbPath + suffix)
		if err != nil {
			continue
		}
		metrics.DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}

func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// diagnosePermissions checks the database directory and any existing
// database/WAL/SHM files for permission problems that would otherwise
// surface as opaque "database is locked" or "readonly database" errors,
// attempting to self-heal read-only WAL/SHM sidecars left behind by an
// unclean shutdown.
func diagnosePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat store directory: %w", err)
	}
	logging.Debug("store: directory %s (mode %v)", dir, dirInfo.Mode())

	probe := filepath.Join(dir, ".store-perm-test")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		metrics.DBStorageErrors.WithLabelValues("main").Inc()
		return fmt.Errorf("store directory not writable: %w", err)
	}
	_ = os.Remove(probe)

	for _, f := range []struct{ path, label string }{
		{dbPath, "main"},
		{dbPath + "-wal", "wal"},
		{dbPath + "-shm", "shm"},
	} {
		info, err := os.Stat(f.path)
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0o200 == 0 {
			logging.Warn("store: %s file is read-only (mode %v), attempting fix", f.label, info.Mode())
			metrics.DBStorageErrors.WithLabelValues(f.label).Inc()
			if chmodErr := os.Chmod(f.path, 0o600); chmodErr != nil {
				logging.Error("store: failed to fix %s permissions: %v", f.label, chmodErr)
			} else {
				logging.Info("store: fixed %s file permissions", f.label)
			}
		}
	}

	return nil
}
