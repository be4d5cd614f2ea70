package store

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/atmx/auction-planner/internal/store/migrations"
)

const (
	markerUp   = "-- +migrate Up"
	markerDown = "-- +migrate Down"
)

// migrationFile is one embedded schema step.
type migrationFile struct {
	name string
	up   string
}

// loadMigrations returns the Up sections under dir, sorted by filename.
func loadMigrations(dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]migrationFile, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(migrations.FS, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		up := extractUp(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}
		files = append(files, migrationFile{name: path.Join(dir, name), up: up})
	}
	return files, nil
}

// extractUp returns the SQL in the -- +migrate Up section.
func extractUp(content string) string {
	upIdx := strings.Index(content, markerUp)
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, markerDown)
	if downIdx == -1 {
		return content[upIdx+len(markerUp):]
	}
	return content[upIdx+len(markerUp) : downIdx]
}
