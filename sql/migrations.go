package sql

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var embedded embed.FS

// LatestVersion is the schema version after all embedded migrations are applied.
const LatestVersion = 2

// Migrations brings the schema up to date. Open runs it inside a transaction.
type Migrations func(Executor) error

// migration is a file named <version>_<description>.sql with statements separated by ';'.
type migration struct {
	version    int
	name       string
	statements []string
}

func loadMigrations() ([]migration, error) {
	entries, err := embedded.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	migrations := make([]migration, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		prefix, _, _ := strings.Cut(name, "_")
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("invalid migration %s: %w", name, err)
		}
		content, err := embedded.ReadFile(path.Join("migrations", name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		m := migration{version: v, name: name}
		for _, stmt := range strings.Split(string(content), ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				m.statements = append(m.statements, stmt+";")
			}
		}
		migrations = append(migrations, m)
	}
	slices.SortFunc(migrations, func(a, b migration) int {
		return a.version - b.version
	})
	return migrations, nil
}

func version(db Executor) (int, error) {
	var current int
	if _, err := db.Exec("PRAGMA user_version;", nil, func(stmt *Statement) bool {
		current = stmt.ColumnInt(0)
		return true
	}); err != nil {
		return 0, fmt.Errorf("read user_version %w", err)
	}
	return current, nil
}

func embeddedMigrations(db Executor) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	current, err := version(db)
	if err != nil {
		return err
	}
	if current > LatestVersion {
		return fmt.Errorf("%w: %d > %d", ErrTooNew, current, LatestVersion)
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		for _, stmt := range m.statements {
			if _, err := db.Exec(stmt, nil, nil); err != nil {
				return fmt.Errorf("migration %s: exec %s: %w", m.name, stmt, err)
			}
		}
		// pragma statements can't bind parameters
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d;", m.version), nil, nil); err != nil {
			return fmt.Errorf("update user_version to %d: %w", m.version, err)
		}
	}
	return nil
}
