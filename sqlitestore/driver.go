package sqlitestore

// cgo driver; swap for modernc.org/sqlite to build without cgo.
import _ "github.com/mattn/go-sqlite3"
