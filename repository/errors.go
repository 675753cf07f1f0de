package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrDuplicateUser is returned when a username or email is taken.
	ErrDuplicateUser = errors.New("username or email already exists")

	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
)

// isDuplicateEntry reports whether err is a MySQL unique key violation.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
