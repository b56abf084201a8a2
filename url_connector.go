// file: url_connector.go
package dbconnector

import (
	"fmt"

	"github.com/xo/dburl"
)

// newURLConnector opens a connection described by a DSN URL and wraps it in
// the connector of the matching engine.
func newURLConnector(cfg ConnectionConfig) (DbConnector, error) {
	u, err := dburl.Parse(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn %s: %w", redactDSN(cfg.DSN), err)
	}
	driver := u.Driver
	switch driver {
	case "odbc":
		if odbcOpener == nil {
			return nil, fmt.Errorf("odbc support not compiled in; rebuild with -tags odbc")
		}
		return odbcOpener(cfg)
	case "sqlite3":
		driver = "sqlite"
	case "mssql":
		driver = "sqlserver"
	}
	db, err := openDatabase(driver, u.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", driver, err)
	}
	switch driver {
	case "sqlserver":
		return &MSSQLConnector{baseConnector{cfg: cfg, db: db, engine: "mssql"}}, nil
	case "sqlite":
		return &SQLiteConnector{baseConnector{cfg: cfg, db: db, engine: "sqlite"}}, nil
	case "mysql":
		return &MySQLConnector{baseConnector{cfg: cfg, db: db, engine: "mysql"}}, nil
	case "postgres":
		return &PostgresConnector{baseConnector{cfg: cfg, db: db, engine: "postgres"}}, nil
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported dsn driver %q", u.Driver)
	}
}

func redactDSN(dsn string) string {
	u, err := dburl.Parse(dsn)
	if err != nil {
		return "<invalid dsn>"
	}
	return u.Redacted()
}
