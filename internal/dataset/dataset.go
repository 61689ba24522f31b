// Package dataset loads PAX indices from JSON, either the copies bundled into
// the binary or files on disk.
package dataset

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stemsi/paxcalc-backend/internal/model"
)

// bundledFS holds the indices shipped with the binary.
//
//go:embed data/*.json
var bundledFS embed.FS

// ErrNotFound is returned when no index matches a year and event format.
var ErrNotFound = errors.New("pax index not found")

// Decode reads one index from r. The class lookup is always derived from the
// decoded groups.
func Decode(r io.Reader) (*model.PaxIndex, error) {
	var idx model.PaxIndex
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode pax index: %w", err)
	}
	return &idx, nil
}

// LoadFile reads one index from a JSON file.
func LoadFile(name string) (*model.PaxIndex, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return idx, nil
}

// Bundled returns every index embedded in the binary, newest first.
func Bundled() ([]*model.PaxIndex, error) {
	return loadFS(bundledFS, "data")
}

// LoadDir returns every *.json index in dir, newest first. A missing
// directory yields no indices.
func LoadDir(dir string) ([]*model.PaxIndex, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return loadFS(os.DirFS(filepath.Clean(dir)), ".")
}

func loadFS(fsys fs.FS, dir string) ([]*model.PaxIndex, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var indices []*model.PaxIndex
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		f, err := fsys.Open(path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		idx, err := Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		indices = append(indices, idx)
	}

	Sort(indices)
	return indices, nil
}

// Sort orders indices by year descending, then by event format.
func Sort(indices []*model.PaxIndex) {
	sort.SliceStable(indices, func(i, j int) bool {
		if indices[i].Year != indices[j].Year {
			return indices[i].Year > indices[j].Year
		}
		return indices[i].IndexType < indices[j].IndexType
	})
}

// Find returns the index for year and indexType from indices.
func Find(indices []*model.PaxIndex, year int, indexType model.IndexType) (*model.PaxIndex, error) {
	for _, idx := range indices {
		if idx.Year == year && idx.IndexType == indexType {
			return idx, nil
		}
	}
	return nil, ErrNotFound
}

// Latest returns the newest index of indexType, or ErrNotFound.
func Latest(indices []*model.PaxIndex, indexType model.IndexType) (*model.PaxIndex, error) {
	var latest *model.PaxIndex
	for _, idx := range indices {
		if idx.IndexType != indexType {
			continue
		}
		if latest == nil || idx.Year > latest.Year {
			latest = idx
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

// Catalog returns the bundled indices together with those in dir, newest
// first. An index in dir replaces the bundled one for the same year and
// format.
func Catalog(dir string) ([]*model.PaxIndex, error) {
	bundled, err := Bundled()
	if err != nil {
		return nil, fmt.Errorf("bundled indices: %w", err)
	}
	local, err := LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset dir: %w", err)
	}

	indices := append([]*model.PaxIndex{}, local...)
	for _, idx := range bundled {
		if _, err := Find(local, idx.Year, idx.IndexType); errors.Is(err, ErrNotFound) {
			indices = append(indices, idx)
		}
	}
	Sort(indices)
	return indices, nil
}
