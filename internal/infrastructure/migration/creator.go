package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"

	// versionWidth matches golang-migrate's sequential numbering (000001_name.up.sql)
	versionWidth = 6
)

var (
	ErrEmptyName       = errors.New("migration: name is required")
	ErrMalformedPrefix = errors.New("migration: file name does not start with a version")
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Name}}{{if .Down}} (rollback){{end}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

// File is a created up/down migration pair
type File struct {
	Version     uint
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// Entry is one migration found in a directory
type Entry struct {
	Version uint
	Name    string
	HasDown bool
}

// String renders the entry the way golang-migrate names its files
func (e Entry) String() string {
	return formatVersion(e.Version) + "_" + e.Name
}

// CreateMigration writes an empty up/down pair numbered after the newest migration in dir
func CreateMigration(dir, name, description string) (*File, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, ErrEmptyName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	entries, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var version uint = 1
	if n := len(entries); n > 0 {
		version = entries[n-1].Version + 1
	}

	base := formatVersion(version) + "_" + slug
	f := &File{
		Version:     version,
		Name:        slug,
		Description: description,
		UpPath:      filepath.Join(dir, base+upSuffix),
		DownPath:    filepath.Join(dir, base+downSuffix),
	}

	created := time.Now().Format(time.RFC3339)
	if err := writeTemplate(f.UpPath, f, created, false); err != nil {
		return nil, err
	}
	if err := writeTemplate(f.DownPath, f, created, true); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func writeTemplate(path string, f *File, created string, down bool) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	return fileTemplate.Execute(out, map[string]any{
		"Name":        f.Name,
		"Description": f.Description,
		"Timestamp":   created,
		"Down":        down,
	})
}

// ListMigrations returns the migrations of dir ordered by version.
// A missing directory has no migrations.
func ListMigrations(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*Entry)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		var base string
		var down bool
		switch {
		case strings.HasSuffix(name, upSuffix):
			base = strings.TrimSuffix(name, upSuffix)
		case strings.HasSuffix(name, downSuffix):
			base, down = strings.TrimSuffix(name, downSuffix), true
		default:
			continue
		}

		version, slug, err := parseBase(base)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		e, ok := byVersion[version]
		if !ok {
			e = &Entry{Version: version, Name: slug}
			byVersion[version] = e
		}
		if down {
			e.HasDown = true
		}
	}

	out := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func parseBase(base string) (uint, string, error) {
	prefix, slug, _ := strings.Cut(base, "_")
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, "", ErrMalformedPrefix
	}
	return uint(v), slug, nil
}

func formatVersion(v uint) string {
	return fmt.Sprintf("%0*d", versionWidth, v)
}

// sanitizeName lowercases name and keeps [a-z0-9], collapsing separators to one underscore
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
