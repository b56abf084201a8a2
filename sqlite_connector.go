// file: sqlite_connector.go
package dbconnector

import (
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteTimeLayout = "2006-01-02 15:04:05"

type SQLiteConnector struct {
	baseConnector
}

func newSQLiteConnector(cfg ConnectionConfig) (*SQLiteConnector, error) {
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, errors.New("sqlite database path is required")
	}
	db, err := openDatabase("sqlite", sqliteDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlite connection: %w", err)
	}
	return &SQLiteConnector{baseConnector{cfg: cfg, db: db, engine: "sqlite"}}, nil
}

func sqliteDSN(cfg ConnectionConfig) string {
	if strings.Contains(cfg.Database, "?") {
		return cfg.Database
	}
	return cfg.Database + "?_pragma=busy_timeout(5000)"
}

// BindTime stores datetimes as text; SQLite has no native datetime type.
func (c *SQLiteConnector) BindTime(t time.Time) any {
	return t.Format(sqliteTimeLayout)
}
