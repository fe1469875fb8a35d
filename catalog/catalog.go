package catalog

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Catalog maps table names to tables. It is built once at startup and
// read-only while queries run.
type Catalog map[string]*Table

// Names returns the table names in sorted order.
func (c Catalog) Names() []string {
	names := maps.Keys(c)
	slices.Sort(names)
	return names
}

// LoadDir reads every regular file under dir as a CSV table. The file
// stem becomes the table name.
func LoadDir(dir string) (Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	cat := Catalog{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		table, err := MakeTable(stem, string(src))
		if err != nil {
			return nil, err
		}
		cat[stem] = table
		slog.Debug("loaded table", "name", stem, "rows", table.Rows(), "columns", len(table.Schema))
	}
	return cat, nil
}
