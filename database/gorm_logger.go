package database

import (
	"context"
	"time"

	"gorm.io/gorm/logger"
)

// contentionLogger wraps a gorm logger and counts SQLite contention errors
// as queries finish. Everything else passes through to the wrapped logger.
type contentionLogger struct {
	logger.Interface
}

func (l contentionLogger) LogMode(level logger.LogLevel) logger.Interface {
	return contentionLogger{Interface: l.Interface.LogMode(level)}
}

func (l contentionLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil {
		noteContention(err)
	}
	l.Interface.Trace(ctx, begin, fc, err)
}
