package testsupport

import (
	"database/sql"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens the process-wide shared in-memory database.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared")
}

// NewSQLiteMemoryDBNamed opens an in-memory database private to name, so
// tests in one package do not see each other's rows.
func NewSQLiteMemoryDBNamed(name string) (*sql.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(strings.TrimSpace(name))
	if name == "" {
		return NewSQLiteMemoryDB()
	}
	return sql.Open("sqlite3", "file:"+url.PathEscape(name)+"?mode=memory&cache=shared&_foreign_keys=1")
}
