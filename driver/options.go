package driver

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// ConnectionOptions is the immutable input to Connect. The password is
// accepted as plaintext; sourcing it securely is the caller's concern.
// This layer never persists options.
type ConnectionOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	// Database is the target database. Optional; engines fall back to their
	// default (postgres, mysql's no-schema state, master, admin).
	Database string
	// FilePath is the database file for SQLite. ":memory:" is accepted.
	FilePath string
	// Timeout bounds connection establishment. Zero means the engine
	// client's default. No statement timeout is derived from it.
	Timeout time.Duration
}

// connectContext applies the connect timeout, if any.
func (o ConnectionOptions) connectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout > 0 {
		return context.WithTimeout(ctx, o.Timeout)
	}
	return context.WithCancel(ctx)
}

func (o ConnectionOptions) hostPort(defaultPort int) string {
	port := o.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(o.Host, strconv.Itoa(port))
}

// postgresDSN builds a pgx connection string. The simple query protocol is
// selected so multi-statement batches pass through unmodified.
func (o ConnectionOptions) postgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   o.hostPort(5432),
		Path:   "/" + o.databaseOr("postgres"),
	}
	if o.Username != "" {
		if o.Password != "" {
			u.User = url.UserPassword(o.Username, o.Password)
		} else {
			u.User = url.User(o.Username)
		}
	}

	query := url.Values{}
	query.Set("sslmode", "prefer")
	query.Set("default_query_exec_mode", "simple_protocol")
	if o.Timeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(o.Timeout/time.Second)))
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// mysqlDSN builds a go-sql-driver/mysql connection string. parseTime makes
// the driver surface temporal columns as time.Time, and multiStatements
// enables atomic batch execution.
func (o ConnectionOptions) mysqlDSN() string {
	dsn := ""
	if o.Username != "" {
		dsn = o.Username
		if o.Password != "" {
			dsn += ":" + o.Password
		}
		dsn += "@"
	}
	dsn += "tcp(" + o.hostPort(3306) + ")/" + o.Database
	dsn += "?parseTime=true&multiStatements=true"
	if o.Timeout > 0 {
		dsn += "&timeout=" + o.Timeout.String()
	}

	return dsn
}

// sqlserverDSN builds a go-mssqldb connection string.
func (o ConnectionOptions) sqlserverDSN() string {
	u := url.URL{
		Scheme: "sqlserver",
		Host:   o.hostPort(1433),
	}
	if o.Username != "" {
		if o.Password != "" {
			u.User = url.UserPassword(o.Username, o.Password)
		} else {
			u.User = url.User(o.Username)
		}
	}

	query := url.Values{}
	if o.Database != "" {
		query.Set("database", o.Database)
	}
	if o.Timeout > 0 {
		query.Set("dial timeout", strconv.Itoa(int(o.Timeout/time.Second)))
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// mongoURI builds a MongoDB connection URI.
func (o ConnectionOptions) mongoURI() string {
	auth := ""
	if o.Username != "" {
		auth = url.QueryEscape(o.Username)
		if o.Password != "" {
			auth += ":" + url.QueryEscape(o.Password)
		}
		auth += "@"
	}

	return fmt.Sprintf("mongodb://%s%s", auth, o.hostPort(27017))
}

func (o ConnectionOptions) databaseOr(fallback string) string {
	if o.Database != "" {
		return o.Database
	}
	return fallback
}
