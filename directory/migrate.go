package directory

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/andrebq/authdeck/internal/logutil"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

var (
	// goose keeps dialect and filesystem as package state
	migrateMu sync.Mutex
)

func migrate(ctx context.Context, db *sql.DB, gooseDialect, dir string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()
	goose.SetLogger(logutil.GooseLogger(logutil.GetOrDefault(ctx)))
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("directory: unable to set migration dialect %v, cause %w", gooseDialect, err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("directory: unable to migrate schema, cause %w", err)
	}
	return nil
}
