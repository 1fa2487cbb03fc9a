//go:build cgo

package library

import _ "github.com/mattn/go-sqlite3"

const driverName = "sqlite3"
