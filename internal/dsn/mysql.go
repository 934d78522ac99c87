// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLResolver handles mysql:// URLs. The driver itself uses the
// user:password@tcp(host:port)/database form, produced by DriverDSN.
type MySQLResolver struct {
	urlResolver
}

// NewMySQLResolver creates a new MySQL resolver
func NewMySQLResolver() *MySQLResolver {
	return &MySQLResolver{urlResolver{
		dbType:      DBTypeMySQL,
		schemes:     []string{"mysql"},
		defaultPort: "3306",
	}}
}

// DriverDSN converts parsed info into a go-sql-driver/mysql DSN.
func (r *MySQLResolver) DriverDSN(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	cfg := mysql.NewConfig()
	cfg.User = info.User
	cfg.Passwd = info.Password
	cfg.Net = "tcp"
	port := info.Port
	if port == "" {
		port = r.defaultPort
	}
	cfg.Addr = net.JoinHostPort(info.Host, port)
	cfg.DBName = info.Database
	cfg.ParseTime = true
	cfg.Timeout = 5 * time.Second
	for k, v := range info.Params {
		switch k {
		case "parseTime":
			cfg.ParseTime = v == "true"
			continue
		case "tls":
			cfg.TLSConfig = v
			continue
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[k] = v
	}
	return cfg.FormatDSN(), nil
}
