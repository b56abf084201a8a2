// file: postgres_connector.go
package dbconnector

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

type PostgresConnector struct {
	baseConnector
}

func newPostgresConnector(cfg ConnectionConfig) (*PostgresConnector, error) {
	cfg.Port = defaultPort(cfg.Port, 5432)
	db, err := openDatabase("postgres", postgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	return &PostgresConnector{baseConnector{cfg: cfg, db: db, engine: "postgres"}}, nil
}

func postgresDSN(cfg ConnectionConfig) string {
	sslMode := strings.ToLower(strings.TrimSpace(cfg.SSLMode))
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", cfg.Host, cfg.Port, quotePostgresValue(cfg.User), quotePostgresValue(cfg.Password), quotePostgresValue(cfg.Database), sslMode)
}

// quotePostgresValue quotes a keyword/value connection parameter when it is
// empty or holds spaces or quotes.
func quotePostgresValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
