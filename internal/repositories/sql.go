package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers
const (
	errDuplicateEntry = 1062
	errLockDeadlock   = 1213
	errLockWaitTimout = 1205
)

// mysqlErrorNumber returns the server error number of err, or 0
func mysqlErrorNumber(err error) uint16 {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}
	return 0
}

func isDuplicateEntry(err error) bool {
	return mysqlErrorNumber(err) == errDuplicateEntry
}

// isRetryable reports whether a transaction failed because of a concurrent writer
func isRetryable(err error) bool {
	switch mysqlErrorNumber(err) {
	case errDuplicateEntry, errLockDeadlock, errLockWaitTimout:
		return true
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so user input is matched literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// requireAffected turns a zero-row result into notFound
func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
