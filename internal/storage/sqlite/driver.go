package sqlite

import (
	"database/sql"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// driverName is the go-sqlite3 driver with the functions below registered
// on every connection.
const driverName = "sqlite3_taskmaster"

// lowerFunc folds case the same way storage.ContainsPattern does. The
// built-in LOWER only folds ASCII letters.
const lowerFunc = "unicode_lower"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(lowerFunc, strings.ToLower, true)
		},
	})
}
