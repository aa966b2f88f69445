package database

import "strings"

// Driver names a database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// IsValid reports whether d is a supported backend.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

var (
	sqlitePrefixes   = []string{"sqlite://", "file:"}
	sqliteSuffixes   = []string{".db", ".sqlite", ".sqlite3"}
	postgresPrefixes = []string{"postgres://", "postgresql://"}
)

// DetectDriver picks a backend from DATABASE_URL. No URL means SQLite, so a
// fresh checkout runs without a server; anything unrecognised is treated as
// a libpq keyword/value string.
func DetectDriver(url string) Driver {
	switch {
	case url == "" || url == ":memory:":
		return DriverSQLite
	case hasAnyPrefix(url, postgresPrefixes):
		return DriverPostgres
	case hasAnyPrefix(url, sqlitePrefixes):
		return DriverSQLite
	}
	for _, suffix := range sqliteSuffixes {
		if strings.HasSuffix(url, suffix) {
			return DriverSQLite
		}
	}
	return DriverPostgres
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// SQLitePathFromURL strips the sqlite:// scheme, leaving a file path or DSN.
func SQLitePathFromURL(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}
