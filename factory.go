// file: factory.go
package dbconnector

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Factory opens a connector; the sync engine calls it once per transaction.
type Factory func(cfg ConnectionConfig) (DbConnector, error)

// odbcOpener is set by odbc_connector.go when built with the odbc tag.
var odbcOpener func(cfg ConnectionConfig) (DbConnector, error)

func NewConnector(cfg ConnectionConfig) (DbConnector, error) {
	if strings.TrimSpace(cfg.DSN) != "" {
		return newURLConnector(cfg)
	}
	if strings.TrimSpace(cfg.Type) == "" {
		return nil, errors.New("connection type is required")
	}
	switch strings.ToLower(cfg.Type) {
	case "mysql":
		return newMySQLConnector(cfg)
	case "postgres", "postgresql":
		return newPostgresConnector(cfg)
	case "mssql", "sqlserver":
		return newMSSQLConnector(cfg)
	case "sqlite", "sqlite3":
		return newSQLiteConnector(cfg)
	case "odbc":
		if odbcOpener == nil {
			return nil, errors.New("odbc support not compiled in; rebuild with -tags odbc")
		}
		return odbcOpener(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

func openDatabase(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return db, nil
}
