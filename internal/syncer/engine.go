// Package syncer replaces the contents of the warning table with a freshly
// loaded batch inside one transaction, and offers the small maintenance
// operations used by the CLI.
package syncer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	dbconnector "warnsync"
	"warnsync/internal/feed"
)

const defaultTimeout = 30 * time.Second

// Statements are the externally supplied SQL templates. Placeholders follow
// the driver in use (? for mysql/sqlite/odbc, $1 for postgres, @p1 for mssql).
type Statements struct {
	// Select takes a warning type id and returns code, datetime, interval,
	// grade, threshold, type id.
	Select string
	// Update takes the new type id then the old one.
	Update string
	// Insert takes code, datetime, interval, grade, threshold and, when a
	// warning type id is configured, the type id.
	Insert string
	// Delete takes the warning type id when one is configured, nothing otherwise.
	Delete string
}

type Options struct {
	// WarnTypeID scopes the sync to one warning category.
	WarnTypeID *int
	// Timeout bounds every operation, including connecting.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// SyncResult describes a committed sync.
type SyncResult struct {
	Deleted  int64
	Inserted int
}

type Engine struct {
	conn    dbconnector.ConnectionConfig
	factory dbconnector.Factory
	sql     Statements
	typeID  *int
	timeout time.Duration
	log     logrus.FieldLogger
}

func New(conn dbconnector.ConnectionConfig, factory dbconnector.Factory, stmts Statements, opts Options) *Engine {
	if factory == nil {
		factory = dbconnector.NewConnector
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Engine{
		conn:    conn,
		factory: factory,
		sql:     stmts,
		typeID:  opts.WarnTypeID,
		timeout: opts.Timeout,
		log:     opts.Logger.WithField("component", "syncer"),
	}
}

// SyncBatch deletes the feed's current rows and inserts records stamped with
// publicationTime (YYYY-MM-DD HH:MM). Either both steps commit or the table
// is left as it was.
func (e *Engine) SyncBatch(ctx context.Context, records []feed.DataRecord, publicationTime string) (SyncResult, error) {
	var res SyncResult
	if len(records) == 0 {
		return res, ErrEmptyBatch
	}
	if err := requireStatements(map[string]string{"insert": e.sql.Insert, "delete": e.sql.Delete}); err != nil {
		return res, err
	}
	pub, err := feed.ParseDisplay(publicationTime)
	if err != nil {
		return res, err
	}

	err = e.withTx(ctx, "sync", func(ctx context.Context, conn dbconnector.DbConnector, tx *sql.Tx) error {
		deleted, err := tx.ExecContext(ctx, e.sql.Delete, e.typeArgs()...)
		if err != nil {
			return storageErr("delete", err)
		}
		if n, err := deleted.RowsAffected(); err == nil {
			res.Deleted = n
		}

		stmt, err := tx.PrepareContext(ctx, e.sql.Insert)
		if err != nil {
			return storageErr("prepare insert", err)
		}
		defer stmt.Close()
		at := conn.BindTime(pub)
		for i, rec := range records {
			args := append([]any{rec.Code, at, rec.IntervalMinutes, rec.Grade, rec.Threshold}, e.typeArgs()...)
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return storageErr("insert", fmt.Errorf("record %d (%s): %w", i, rec.Code, err))
			}
			res.Inserted++
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}
	e.log.WithFields(logrus.Fields{"deleted": res.Deleted, "inserted": res.Inserted, "published": publicationTime}).Debug("batch committed")
	return res, nil
}

// SelectByType reads back the rows of one warning category.
func (e *Engine) SelectByType(ctx context.Context, typeID int) ([]feed.DataRecord, error) {
	if err := requireStatements(map[string]string{"select": e.sql.Select}); err != nil {
		return nil, err
	}
	records := []feed.DataRecord{}
	err := e.withTx(ctx, "select", func(ctx context.Context, _ dbconnector.DbConnector, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, e.sql.Select, typeID)
		if err != nil {
			return storageErr("select", err)
		}
		defer rows.Close()
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return storageErr("scan", err)
			}
			records = append(records, rec)
		}
		if err := rows.Err(); err != nil {
			return storageErr("iterate", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateType moves every row of category oldID to newID and returns the
// number of rows changed.
func (e *Engine) UpdateType(ctx context.Context, oldID, newID int) (int64, error) {
	if err := requireStatements(map[string]string{"update": e.sql.Update}); err != nil {
		return 0, err
	}
	if e.typeID == nil {
		return 0, fmt.Errorf("update: %w", ErrUnscoped)
	}
	return e.execCounted(ctx, "update", e.sql.Update, newID, oldID)
}

// DeleteByType removes every row of one category. Like UpdateType it needs a
// configured warning type id.
func (e *Engine) DeleteByType(ctx context.Context, typeID int) (int64, error) {
	if err := requireStatements(map[string]string{"delete": e.sql.Delete}); err != nil {
		return 0, err
	}
	if e.typeID == nil {
		return 0, fmt.Errorf("delete: %w", ErrUnscoped)
	}
	return e.execCounted(ctx, "delete", e.sql.Delete, typeID)
}

// Ping opens a connection and checks the database answers.
func (e *Engine) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	conn, err := e.factory(e.conn)
	if err != nil {
		return storageErr("connect", err)
	}
	defer conn.Close()
	if err := conn.TestConnection(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

func (e *Engine) execCounted(ctx context.Context, op, query string, args ...any) (int64, error) {
	var affected int64
	err := e.withTx(ctx, op, func(ctx context.Context, _ dbconnector.DbConnector, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return storageErr(op, err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return storageErr(op, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// withTx runs fn inside a transaction on a freshly opened connection. A
// failing fn is rolled back; otherwise the transaction is committed.
func (e *Engine) withTx(ctx context.Context, op string, fn func(context.Context, dbconnector.DbConnector, *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn, err := e.factory(e.conn)
	if err != nil {
		return storageErr("connect", err)
	}
	defer conn.Close()

	tx, err := conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin", err)
	}
	if err := fn(ctx, conn, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			e.log.WithError(rbErr).WithField("op", op).Error("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit", err)
	}
	return nil
}

func (e *Engine) typeArgs() []any {
	if e.typeID == nil {
		return nil
	}
	return []any{*e.typeID}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (feed.DataRecord, error) {
	var (
		code      sql.NullString
		at        any
		interval  sql.NullInt64
		grade     sql.NullInt64
		threshold sql.NullFloat64
		typeID    sql.NullInt64
	)
	if err := row.Scan(&code, &at, &interval, &grade, &threshold, &typeID); err != nil {
		return feed.DataRecord{}, err
	}
	rec := feed.DataRecord{
		Code:            code.String,
		IntervalMinutes: int(interval.Int64),
		Grade:           int(grade.Int64),
		Threshold:       threshold.Float64,
	}
	if t, ok := dbconnector.ToTime(at); ok {
		rec.ValidTime = feed.FormatDisplay(t)
	} else if v := dbconnector.NormalizeValue(at); v != nil {
		rec.ValidTime = fmt.Sprint(v)
	}
	if typeID.Valid {
		id := int(typeID.Int64)
		rec.WarningTypeID = &id
	}
	return rec, nil
}

func requireStatements(stmts map[string]string) error {
	for name, stmt := range stmts {
		if strings.TrimSpace(stmt) == "" {
			return fmt.Errorf("%s: %w", name, ErrNoStatement)
		}
	}
	return nil
}
