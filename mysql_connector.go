// file: mysql_connector.go
package dbconnector

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLConnector struct {
	baseConnector
}

func newMySQLConnector(cfg ConnectionConfig) (*MySQLConnector, error) {
	cfg.Port = defaultPort(cfg.Port, 3306)
	db, err := openDatabase("mysql", mysqlDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}
	return &MySQLConnector{baseConnector{cfg: cfg, db: db, engine: "mysql"}}, nil
}

func mysqlDSN(cfg ConnectionConfig) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	sslMode := strings.ToLower(strings.TrimSpace(cfg.SSLMode))
	if sslMode == "disable" {
		dsn += "&tls=false"
	} else if sslMode != "" {
		dsn += "&tls=true"
	}
	return dsn
}
