//go:build !cgo

package library

import _ "modernc.org/sqlite"

const driverName = "sqlite"
