package db

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

var errDBUnavailable = errors.New("database unavailable")

// Open connects to postgres when a DSN is given; an empty DSN falls back to
// an embedded sqlite database (in-memory when sqlitePath is also empty),
// which is what the tests and the local workflow use.
func Open(postgresDSN, sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	}
	if postgresDSN != "" {
		gdb, err := gorm.Open(postgres.Open(postgresDSN), cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return gdb, nil
	}
	if sqlitePath == "" {
		sqlitePath = "file::memory:?cache=shared"
	}
	gdb, err := gorm.Open(sqlite.Open(sqlitePath), cfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates the schema.
func Migrate(gdb *gorm.DB) error {
	if gdb == nil {
		return errDBUnavailable
	}
	return gdb.AutoMigrate(&LeaderModel{}, &SheetModel{}, &AdhesionModel{})
}

// translateErr maps gorm sentinel errors onto the domain error taxonomy.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return petition.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return petition.ErrConflict
	default:
		return err
	}
}
