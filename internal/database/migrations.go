package database

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsFS returns the embedded schema migrations rooted at "migrations".
func MigrationsFS() fs.FS {
	return migrationsFS
}

// MigrationsPath is the directory inside MigrationsFS holding the SQL files.
const MigrationsPath = "migrations"
