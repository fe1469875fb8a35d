package csvql

import (
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/freeeve/csvql/catalog"
)

//go:embed data/*.csv
var dataFS embed.FS

// EmbeddedCatalog builds a catalog from the CSV files compiled into the
// binary. The wasm build serves queries from it; it is also handy as a
// fixture.
func EmbeddedCatalog() (catalog.Catalog, error) {
	entries, err := fs.ReadDir(dataFS, "data")
	if err != nil {
		return nil, err
	}
	cat := catalog.Catalog{}
	for _, entry := range entries {
		src, err := dataFS.ReadFile(path.Join("data", entry.Name()))
		if err != nil {
			return nil, err
		}
		stem := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		table, err := catalog.MakeTable(stem, string(src))
		if err != nil {
			return nil, err
		}
		cat[stem] = table
	}
	return cat, nil
}
