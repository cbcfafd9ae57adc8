// Package migrate applies the goose schema for alerts, acknowledgments, rosters and the group feed.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/aresconnect/ares-connect-backend/pkg/config"
)

// DefaultDir is the on-disk location used by create and validate.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source locates migration files inside a filesystem.
type Source struct {
	FS  fs.FS
	Dir string
}

// Embedded returns the migrations compiled into the binary.
func Embedded() Source {
	return Source{FS: embedded, Dir: "migrations"}
}

// Disk reads migrations from dir on the local filesystem.
func Disk(dir string) Source {
	return Source{FS: os.DirFS(dir), Dir: "."}
}

// goose keeps its dialect and base FS in package globals.
var gooseMu sync.Mutex

// DialectFor maps the configured DB driver to the goose dialect name.
func DialectFor(cfg config.DBConfig) string {
	if cfg.IsSQLite() {
		return "sqlite3"
	}
	return "postgres"
}

// Run executes a goose command such as up, down, status, redo or reset.
func Run(ctx context.Context, db *sql.DB, dialect string, src Source, command string, args ...string) error {
	return withGoose(dialect, src, db, func() error {
		if err := goose.RunContext(ctx, command, db, src.Dir, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// MigrateToVersion moves the schema up or down until it matches targetVersion (YYYYMMDDHHMMSS).
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect string, src Source, targetVersion string) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil || target <= 0 {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", targetVersion)
	}

	return withGoose(dialect, src, db, func() error {
		current, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}
		switch {
		case current < target:
			err = goose.UpToContext(ctx, db, src.Dir, target)
		case current > target:
			err = goose.DownToContext(ctx, db, src.Dir, target)
		}
		if err != nil {
			return fmt.Errorf("goose %d -> %d: %w", current, target, err)
		}
		return nil
	})
}

// Version reports the last applied migration.
func Version(ctx context.Context, db *sql.DB, dialect string) (int64, error) {
	var version int64
	err := withGoose(dialect, Source{}, db, func() error {
		v, err := goose.GetDBVersionContext(ctx, db)
		version = v
		return err
	})
	return version, err
}

func withGoose(dialect string, src Source, db *sql.DB, fn func() error) error {
	if db == nil {
		return errors.New("db is required")
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(src.FS)
	defer goose.SetBaseFS(nil)
	return fn()
}
