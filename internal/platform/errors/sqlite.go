package errors

// SQLite helpers: the modernc driver reports failures as an error with a
// numeric Code(); these map the primary result codes we care about

import (
	stderrs "errors"
	"fmt"
)

const (
	sqliteBusy       = 5
	sqliteLocked     = 6
	sqliteReadOnly   = 8
	sqliteConstraint = 19
)

type sqliteCoder interface {
	error
	Code() int
}

// SQLiteCode returns the primary result code of a driver error
// extended codes are folded onto their primary code (low byte)
func SQLiteCode(err error) (int, bool) {
	var c sqliteCoder
	if !stderrs.As(err, &c) {
		return 0, false
	}
	return c.Code() & 0xff, true
}

// IsSQLiteBusy reports SQLITE_BUSY or SQLITE_LOCKED
func IsSQLiteBusy(err error) bool {
	code, ok := SQLiteCode(err)
	return ok && (code == sqliteBusy || code == sqliteLocked)
}

// FromSQLite wraps a sqlite error with a mapped code; nil stays nil
func FromSQLite(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeDB
	if c, ok := SQLiteCode(err); ok {
		switch c {
		case sqliteBusy, sqliteLocked, sqliteReadOnly:
			code = ErrorCodeUnavailable
		case sqliteConstraint:
			code = ErrorCodeConflict
		}
	}
	return Wrap(err, code, fmt.Sprintf(format, a...))
}
