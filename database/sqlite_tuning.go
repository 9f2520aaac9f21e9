package database

import (
	"fmt"
	"net/url"
	"strings"

	"toloka2web/config"
)

type sqlitePoolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
	maxLifeSec   int
}

// currentSQLitePoolConfig reads the pool knobs from settings and clamps them
// to workable values. SQLite needs at least one writer connection.
func currentSQLitePoolConfig(settings *config.Config) sqlitePoolConfig {
	p := sqlitePoolConfig{
		maxOpenConns: settings.SQLiteMaxOpenConns,
		maxIdleConns: settings.SQLiteMaxIdleConns,
		maxIdleSec:   settings.SQLiteConnMaxIdleSec,
		maxLifeSec:   settings.SQLiteConnMaxLifeSec,
	}
	if p.maxOpenConns < 1 {
		p.maxOpenConns = 1
	}
	if p.maxIdleConns < 0 {
		p.maxIdleConns = 0
	}
	if p.maxIdleConns > p.maxOpenConns {
		p.maxIdleConns = p.maxOpenConns
	}
	if p.maxIdleSec < 0 {
		p.maxIdleSec = 0
	}
	if p.maxLifeSec < 0 {
		p.maxLifeSec = 0
	}
	return p
}

// buildSQLiteDSN appends _pragma parameters (busy_timeout, journal_mode,
// synchronous, foreign_keys) to the database path when pragma tuning is
// enabled, preserving any query string already present on the path.
func buildSQLiteDSN(dbPath string, settings *config.Config) string {
	base, rawQuery, _ := strings.Cut(dbPath, "?")
	query, _ := url.ParseQuery(rawQuery)

	if settings.SQLitePragmasEnabled {
		if settings.SQLiteBusyTimeoutMS > 0 {
			query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", settings.SQLiteBusyTimeoutMS))
		}
		if mode := pragmaValue(settings.SQLiteJournalMode, "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF"); mode != "" {
			query.Add("_pragma", "journal_mode("+mode+")")
		}
		if sync := pragmaValue(settings.SQLiteSynchronous, "OFF", "NORMAL", "FULL", "EXTRA", "0", "1", "2", "3"); sync != "" {
			query.Add("_pragma", "synchronous("+sync+")")
		}
		if settings.SQLiteForeignKeys {
			query.Add("_pragma", "foreign_keys(1)")
		} else {
			query.Add("_pragma", "foreign_keys(0)")
		}
	}

	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// pragmaValue uppercases value and returns it only when it is in the allowed
// set, so a typo in the environment falls back to the SQLite default.
func pragmaValue(value string, allowed ...string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return ""
}
