// file: odbc_connstr.go
package dbconnector

import (
	"fmt"
	"strings"
)

// odbcConnString assembles a DRIVER=...;SERVER=... connection string from the
// discrete connection fields.
func odbcConnString(cfg ConnectionConfig) string {
	parts := []string{}
	add := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		if strings.ContainsAny(value, ";{}") {
			value = "{" + strings.ReplaceAll(value, "}", "}}") + "}"
		}
		parts = append(parts, key+"="+value)
	}
	if driver := strings.TrimSpace(cfg.Driver); driver != "" {
		parts = append(parts, "DRIVER={"+strings.Trim(driver, "{}")+"}")
	}
	server := cfg.Host
	if cfg.Port != 0 {
		server = fmt.Sprintf("%s,%d", cfg.Host, cfg.Port)
	}
	add("SERVER", server)
	add("DATABASE", cfg.Database)
	add("UID", cfg.User)
	add("PWD", cfg.Password)
	if strings.EqualFold(strings.TrimSpace(cfg.SSLMode), "disable") {
		add("Encrypt", "no")
	}
	return strings.Join(parts, ";") + ";"
}
