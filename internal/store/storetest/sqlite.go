// Package storetest provides throwaway databases for tests of the ledger.
package storetest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/feral-file/contract-ledger/internal/store/schema"
)

// Models lists every table of the ledger
func Models() []any {
	return []any{
		&schema.ContractStateEvent{},
		&schema.ContractCurrentState{},
		&schema.ContractLedgerLock{},
	}
}

// NewSQLiteDB opens a private in-memory SQLite database with the ledger schema.
// The pool is limited to one connection, which also serializes transactions
// the way the row lock does on PostgreSQL.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Models()...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
