package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateSQLMigration scaffolds <dir>/<YYYYMMDDHHMMSS>_<name>.sql stamped with
// the current UTC time.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

// createSQLMigration refuses a name already used by another migration and
// moves the version forward a second at a time until it is free, so two
// scaffolds in the same second keep a strict order.
func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeMigrationName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	versions, err := existingMigrations(dir, safe)
	if err != nil {
		return "", err
	}

	version := now.UTC()
	for versions[version.Format(versionLayout)] {
		version = version.Add(time.Second)
	}
	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), safe))

	template := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, safe, safe)

	if err := os.WriteFile(fullpath, []byte(template), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeMigrationName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

// existingMigrations returns the versions in dir, failing if one of them is
// already named name.
func existingMigrations(dir, name string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	versions := map[string]bool{}
	for _, e := range entries {
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		versions[m[1]] = true
		if strings.TrimSuffix(e.Name()[len(m[1])+1:], ".sql") == name {
			return nil, fmt.Errorf("migration %q already exists as %s", name, e.Name())
		}
	}
	return versions, nil
}
