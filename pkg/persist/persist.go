package persist

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"lingoscope/pkg/breakpoint"
)

const schema = `CREATE TABLE IF NOT EXISTS breakpoints (
	id INTEGER PRIMARY KEY,
	kind INTEGER NOT NULL,
	container_id INTEGER NOT NULL,
	handler VARCHAR(255) NOT NULL,
	byte_offset BIGINT NOT NULL,
	enabled BOOLEAN NOT NULL
)`

// Repo stores breakpoints in a SQL database.
type Repo struct {
	db     *sql.DB
	driver string
}

// Open connects to a sqlite, mysql or postgres database and creates the
// breakpoints table.
func Open(ctx context.Context, dbType, dsn string) (*Repo, error) {
	var driverName string
	switch dbType {
	case "sqlite", "sqlite3":
		driverName = "sqlite"
	case "postgres", "postgresql":
		driverName = "postgres"
	case "mysql":
		driverName = "mysql"
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driverName == "sqlite" {
		// one connection keeps an in-memory database alive and serialises writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	r := &Repo{db: db, driver: driverName}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return r, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// rebind rewrites ? placeholders for drivers that number them.
func (r *Repo) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var out strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			out.WriteString("$" + strconv.Itoa(n))
			continue
		}
		out.WriteRune(c)
	}
	return out.String()
}

func (r *Repo) LoadBreakpoints(ctx context.Context) ([]breakpoint.Breakpoint, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, kind, container_id, handler, byte_offset, enabled FROM breakpoints ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var bps []breakpoint.Breakpoint
	for rows.Next() {
		var bp breakpoint.Breakpoint
		var kind int
		var offset int64
		if err := rows.Scan(&bp.ID, &kind, &bp.ContainerID, &bp.Handler, &offset, &bp.Enabled); err != nil {
			return nil, err
		}
		bp.Kind = breakpoint.Kind(kind)
		bp.Offset = uint32(offset)
		bps = append(bps, bp)
	}
	return bps, rows.Err()
}

// SaveBreakpoints replaces the stored breakpoints with bps.
func (r *Repo) SaveBreakpoints(ctx context.Context, bps []breakpoint.Breakpoint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := r.replace(ctx, tx, bps); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %v, rollback failed: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *Repo) replace(ctx context.Context, tx *sql.Tx, bps []breakpoint.Breakpoint) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM breakpoints"); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.rebind("INSERT INTO breakpoints (id, kind, container_id, handler, byte_offset, enabled) VALUES (?, ?, ?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, bp := range bps {
		if _, err := stmt.ExecContext(ctx, bp.ID, int(bp.Kind), bp.ContainerID, bp.Handler, int64(bp.Offset), bp.Enabled); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
	}
	return nil
}
