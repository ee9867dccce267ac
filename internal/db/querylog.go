package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// queryLogConnector opens sqlite3 connections whose statements are logged
// with their arguments and duration at debug level.
type queryLogConnector struct {
	dsn    string
	logger *slog.Logger
	driver *sqlite3.SQLiteDriver
}

type queryLogConn struct {
	driver.Conn
	logger *slog.Logger
}

type queryLogStmt struct {
	driver.Stmt
	query  string
	logger *slog.Logger
}

// NewQueryLogConnector returns a connector for sql.OpenDB. A nil logger
// uses slog.Default().
func NewQueryLogConnector(dsn string, logger *slog.Logger) driver.Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &queryLogConnector{dsn: dsn, logger: logger, driver: &sqlite3.SQLiteDriver{}}
}

func (c *queryLogConnector) Connect(_ context.Context) (driver.Conn, error) {
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &queryLogConn{Conn: conn, logger: c.logger}, nil
}

func (c *queryLogConnector) Driver() driver.Driver {
	return c.driver
}

func (c *queryLogConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *queryLogConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if prep, ok := c.Conn.(driver.ConnPrepareContext); ok {
		stmt, err = prep.PrepareContext(ctx, query)
	} else {
		stmt, err = c.Conn.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &queryLogStmt{Stmt: stmt, query: query, logger: c.logger}, nil
}

// ExecContext runs the whole query string on the underlying connection so
// multi-statement scripts such as migrations are applied in full.
func (c *queryLogConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	start := time.Now()
	res, err := execer.ExecContext(ctx, query, args)
	if errors.Is(err, driver.ErrSkip) {
		return nil, err
	}
	logQuery(ctx, c.logger, "exec", query, args, time.Since(start), err)
	return res, err
}

func (c *queryLogConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	start := time.Now()
	rows, err := queryer.QueryContext(ctx, query, args)
	if errors.Is(err, driver.ErrSkip) {
		return nil, err
	}
	logQuery(ctx, c.logger, "query", query, args, time.Since(start), err)
	return rows, err
}

func (c *queryLogConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if beginTx, ok := c.Conn.(driver.ConnBeginTx); ok {
		return beginTx.BeginTx(ctx, opts)
	}
	//nolint:staticcheck // SA1019 – fallback when the conn has no BeginTx
	return c.Conn.Begin()
}

func (s *queryLogStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	var (
		res driver.Result
		err error
	)
	if execCtx, ok := s.Stmt.(driver.StmtExecContext); ok {
		res, err = execCtx.ExecContext(ctx, args)
	} else {
		//nolint:staticcheck // SA1019 – fallback when the stmt has no ExecContext
		res, err = s.Stmt.Exec(namedValues(args))
	}
	logQuery(ctx, s.logger, "exec", s.query, args, time.Since(start), err)
	return res, err
}

func (s *queryLogStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	var (
		rows driver.Rows
		err  error
	)
	if queryCtx, ok := s.Stmt.(driver.StmtQueryContext); ok {
		rows, err = queryCtx.QueryContext(ctx, args)
	} else {
		//nolint:staticcheck // SA1019 – fallback when the stmt has no QueryContext
		rows, err = s.Stmt.Query(namedValues(args))
	}
	logQuery(ctx, s.logger, "query", s.query, args, time.Since(start), err)
	return rows, err
}

func logQuery(ctx context.Context, logger *slog.Logger, op, query string, args []driver.NamedValue, d time.Duration, err error) {
	attrs := []any{
		"op", op,
		"sql", query,
		"args", formatArgs(args),
		"duration_ms", float64(d.Microseconds()) / 1000,
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	logger.DebugContext(ctx, "sql", attrs...)
}

func namedValues(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i := range args {
		out[i] = args[i].Value
	}
	return out
}

func formatArgs(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		v := "NULL"
		if a.Value != nil {
			if b, ok := a.Value.([]byte); ok {
				v = string(b)
			} else {
				v = fmt.Sprint(a.Value)
			}
		}
		if a.Name != "" {
			v = a.Name + "=" + v
		}
		out[i] = v
	}
	return out
}
