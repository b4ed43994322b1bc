package dataset

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Registry holds every loaded table at the position it was enumerated in.
type Registry struct {
	dir    string
	tables []*Table
}

// Load reads every CSV file in dir. os.ReadDir returns entries sorted by file
// name, so positions are stable across runs and platforms. Files are parsed
// concurrently; when several fail, the error for the earliest position wins.
func Load(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}

	var paths []string
	for _, entry := range entries {
		if isDataFile(entry) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	tables := make([]*Table, len(paths))
	errs := make([]error, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			tables[i], errs[i] = readTable(path)
			return errs[i]
		})
	}
	g.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &LoadError{Path: paths[i], Err: err}
		}
	}
	return &Registry{dir: dir, tables: tables}, nil
}

func isDataFile(entry fs.DirEntry) bool {
	name := entry.Name()
	if entry.IsDir() || strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// Dir is the directory the registry was loaded from.
func (r *Registry) Dir() string {
	return r.dir
}

// Len returns the number of loaded tables.
func (r *Registry) Len() int {
	return len(r.tables)
}

// Table returns the table at position i.
func (r *Registry) Table(i int) (*Table, bool) {
	if i < 0 || i >= len(r.tables) {
		return nil, false
	}
	return r.tables[i], true
}

// Tables returns the tables in position order.
func (r *Registry) Tables() []*Table {
	out := make([]*Table, len(r.tables))
	copy(out, r.tables)
	return out
}
