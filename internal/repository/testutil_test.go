package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/sprint-connect-api/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// lockedReads returns the tables queried with a FOR UPDATE clause so far.
// SQLite drops the clause from the SQL it runs, so the statement is
// inspected instead.
func lockedReads(t *testing.T, db *gorm.DB) func() []string {
	t.Helper()

	var (
		mu     sync.Mutex
		tables []string
	)
	err := db.Callback().Query().After("gorm:query").Register("test:locked_reads", func(tx *gorm.DB) {
		c, ok := tx.Statement.Clauses["FOR"]
		if !ok {
			return
		}
		if locking, ok := c.Expression.(clause.Locking); !ok || locking.Strength != "UPDATE" {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		tables = append(tables, tx.Statement.Table)
	})
	require.NoError(t, err)

	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), tables...)
	}
}
