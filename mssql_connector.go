// file: mssql_connector.go
package dbconnector

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
)

type MSSQLConnector struct {
	baseConnector
}

func newMSSQLConnector(cfg ConnectionConfig) (*MSSQLConnector, error) {
	cfg.Port = defaultPort(cfg.Port, 1433)
	db, err := openDatabase("sqlserver", mssqlDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open mssql connection: %w", err)
	}
	return &MSSQLConnector{baseConnector{cfg: cfg, db: db, engine: "mssql"}}, nil
}

func mssqlDSN(cfg ConnectionConfig) string {
	user := url.QueryEscape(cfg.User)
	pass := url.QueryEscape(cfg.Password)
	sslMode := strings.ToLower(strings.TrimSpace(cfg.SSLMode))
	encrypt := "true"
	if sslMode == "disable" {
		encrypt = "disable"
	}
	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s&encrypt=%s", user, pass, cfg.Host, cfg.Port, url.QueryEscape(cfg.Database), encrypt)
}

// BindTime sends the publication time as a legacy DATETIME rather than
// DATETIME2, matching the column type of the warning tables.
func (c *MSSQLConnector) BindTime(t time.Time) any {
	return mssql.DateTime1(t)
}
