package database

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"
)

// Contention counters exposed by the health endpoint. SQLite reports lock
// pressure through error text, so classification is string-based.
var contention struct {
	busy   atomic.Uint64
	locked atomic.Uint64
}

func noteContention(err error) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "sqlite_busy"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "busy timeout"):
		contention.busy.Add(1)
	case strings.Contains(msg, "sqlite_locked"),
		strings.Contains(msg, "database table is locked"):
		contention.locked.Add(1)
	}
}

// SQLiteBusyErrorsTotal reports how many SQLITE_BUSY errors were observed.
func SQLiteBusyErrorsTotal() uint64 {
	return contention.busy.Load()
}

// SQLiteLockedErrorsTotal reports how many SQLITE_LOCKED errors were observed.
func SQLiteLockedErrorsTotal() uint64 {
	return contention.locked.Load()
}

// SQLiteUp reports whether the main database answers a ping before the
// context deadline, falling back to a 200ms budget when none is set.
func SQLiteUp(ctx context.Context) bool {
	if DB == nil {
		return false
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return false
	}
	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}
	return sqlDB.PingContext(ctx) == nil
}
