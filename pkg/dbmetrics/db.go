package dbmetrics

import (
	"context"
	"database/sql"
	"time"
)

// QueryObserver receives timing for every executed statement and periodic
// connection pool snapshots. Implemented by pkg/metrics.
type QueryObserver interface {
	ObserveDBQuery(service string, duration time.Duration, err error)
	SetDBPoolStats(service string, stats sql.DBStats)
}

// DB wraps *sql.DB, reporting query durations and pool stats to the observer
type DB struct {
	db       *sql.DB
	observer QueryObserver
	service  string
}

// Wrap wraps the database handle with query metrics
func Wrap(db *sql.DB, observer QueryObserver, service string) *DB {
	return &DB{db: db, observer: observer, service: service}
}

// WrapWithDefault wraps the database handle and starts a goroutine that
// publishes connection pool stats every 15 seconds until stopCh is closed
func WrapWithDefault(db *sql.DB, observer QueryObserver, service string, stopCh <-chan struct{}) *DB {
	wrapped := Wrap(db, observer, service)
	go wrapped.collectPoolStats(15*time.Second, stopCh)
	return wrapped
}

// ExecContext executes a statement, reporting its duration
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.observer.ObserveDBQuery(d.service, time.Since(start), err)
	return res, err
}

// QueryContext executes a query, reporting its duration
func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.observer.ObserveDBQuery(d.service, time.Since(start), err)
	return rows, err
}

// QueryRowContext executes a single-row query, reporting its duration
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.observer.ObserveDBQuery(d.service, time.Since(start), nil)
	return row
}

// BeginTx opens a transaction whose statements are also measured
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &measuredTx{tx: tx, observer: d.observer, service: d.service}, nil
}

func (d *DB) collectPoolStats(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.observer.SetDBPoolStats(d.service, d.db.Stats())
		case <-stopCh:
			return
		}
	}
}

// measuredTx wraps *sql.Tx with the same per-statement timing as DB
type measuredTx struct {
	tx       *sql.Tx
	observer QueryObserver
	service  string
}

func (t *measuredTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.observer.ObserveDBQuery(t.service, time.Since(start), err)
	return res, err
}

func (t *measuredTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.observer.ObserveDBQuery(t.service, time.Since(start), err)
	return rows, err
}

func (t *measuredTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.observer.ObserveDBQuery(t.service, time.Since(start), nil)
	return row
}

func (t *measuredTx) Commit() error {
	return t.tx.Commit()
}

func (t *measuredTx) Rollback() error {
	return t.tx.Rollback()
}
