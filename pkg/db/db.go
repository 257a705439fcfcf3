package db

import (
	"database/sql"
	"path/filepath"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/yumyai/protlit/internal/util"
)

// Store bundles the sqlite history and the on-disk structure files that
// live under one data directory.
type Store struct {
	sql        *sql.DB
	Structures *StructureStore
	History    *HistoryStore
}

// Open creates dataDir if needed and opens dataDir/protlit.db.
func Open(dataDir string) (*Store, error) {
	if err := util.EnsureDir(dataDir); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dataDir)
	}

	structures, err := NewStructureStore(filepath.Join(dataDir, "structures"))
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("sqlite", filepath.Join(dataDir, "protlit.db"))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// one writer keeps sqlite from returning SQLITE_BUSY under concurrent requests
	sqlDB.SetMaxOpenConns(1)

	history := NewHistoryStore(sqlDB)
	if err := history.Migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &Store{sql: sqlDB, Structures: structures, History: history}, nil
}

func (s *Store) Close() error {
	return s.sql.Close()
}
