//go:build odbc

// file: odbc_connector.go
package dbconnector

import (
	"fmt"
	"strings"

	_ "github.com/alexbrainman/odbc"
	"github.com/xo/dburl"
)

type ODBCConnector struct {
	baseConnector
}

func init() {
	odbcOpener = func(cfg ConnectionConfig) (DbConnector, error) {
		return newODBCConnector(cfg)
	}
}

func newODBCConnector(cfg ConnectionConfig) (*ODBCConnector, error) {
	dsn := odbcConnString(cfg)
	if strings.TrimSpace(cfg.DSN) != "" {
		u, err := dburl.Parse(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse odbc dsn %s: %w", redactDSN(cfg.DSN), err)
		}
		dsn = u.DSN
	}
	db, err := openDatabase("odbc", dsn)
	if err != nil {
		return nil, fmt.Errorf("open odbc connection: %w", err)
	}
	return &ODBCConnector{baseConnector{cfg: cfg, db: db, engine: "odbc"}}, nil
}
